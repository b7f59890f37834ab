package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"apptcal/internal/dialog"
	"apptcal/internal/i18n"
	"apptcal/internal/interaction"
	"apptcal/internal/model"
	"apptcal/internal/ui/utils"
)

// displayLayout is how the schedule dialog shows its seeded range
const displayLayout = "Jan 2, 2006 3:04 PM"

// inputCursor is the cursor mode of every dialog input
var inputCursor = cursor.CursorBlink

// dialogForm holds the text inputs of the open dialog. The dialog's
// validated values live in the machine; this only carries what is typed.
type dialogForm struct {
	kind    dialog.Kind
	focus   int
	clients []model.Client
	// clientIdx is -1 until a client is picked
	clientIdx int

	start       textinput.Model
	end         textinput.Model
	description textinput.Model
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Cursor.SetMode(inputCursor)
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 36
	ti.SetValue(value)
	return ti
}

func newDialogForm(coord dialog.Coordinator, clients []model.Client) dialogForm {
	f := dialogForm{
		kind:      coord.Kind(),
		clients:   clients,
		clientIdx: -1,
	}

	switch f.kind {
	case dialog.ScheduleCreate:
		f.description = newInput(i18n.T("dialog.placeholder.description"), "")
	case dialog.Edit:
		f.start = newInput(dialog.InputLayout, coord.Edit.Start)
		f.end = newInput(dialog.InputLayout, coord.Edit.End)
		f.description = newInput(i18n.T("dialog.placeholder.description"), coord.Edit.Description)
		f.clientIdx = f.indexOf(coord.Edit.ClientID)
	}
	f.setFocus(0)
	return f
}

func (f dialogForm) indexOf(id int64) int {
	for i, c := range f.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f dialogForm) clientID() int64 {
	if f.clientIdx < 0 || f.clientIdx >= len(f.clients) {
		return 0
	}
	return f.clients[f.clientIdx].ID
}

func (f dialogForm) clientLabel() string {
	if f.clientIdx < 0 || f.clientIdx >= len(f.clients) {
		return i18n.T("dialog.client.select")
	}
	return f.clients[f.clientIdx].Name
}

// fields lists the focusable inputs in tab order; nil is the client picker
func (f *dialogForm) fields() []*textinput.Model {
	switch f.kind {
	case dialog.ScheduleCreate:
		return []*textinput.Model{nil, &f.description}
	case dialog.Edit:
		return []*textinput.Model{nil, &f.start, &f.end, &f.description}
	}
	return nil
}

func (f *dialogForm) setFocus(idx int) {
	fields := f.fields()
	if len(fields) == 0 {
		f.focus = 0
		return
	}
	f.focus = (idx + len(fields)) % len(fields)
	for i, in := range fields {
		if in == nil {
			continue
		}
		if i == f.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *dialogForm) pickerFocused() bool {
	fields := f.fields()
	return f.focus < len(fields) && fields[f.focus] == nil
}

func (f *dialogForm) cycleClient(delta int) {
	n := len(f.clients)
	if n == 0 {
		return
	}
	if f.clientIdx < 0 {
		if delta > 0 {
			f.clientIdx = 0
		} else {
			f.clientIdx = n - 1
		}
		return
	}
	f.clientIdx = (f.clientIdx + delta + n) % n
}

// update forwards input to the focused text field
func (f *dialogForm) update(msg tea.Msg) tea.Cmd {
	fields := f.fields()
	if f.focus >= len(fields) || fields[f.focus] == nil {
		return nil
	}
	var cmd tea.Cmd
	*fields[f.focus], cmd = fields[f.focus].Update(msg)
	return cmd
}

// submit builds the machine event for the current dialog
func (f dialogForm) submit() interaction.Event {
	switch f.kind {
	case dialog.ScheduleCreate:
		return interaction.CreateSubmit{
			ClientID:    f.clientID(),
			Description: strings.TrimSpace(f.description.Value()),
		}
	case dialog.Edit:
		return interaction.EditSubmit{
			ClientID:    f.clientID(),
			Start:       f.start.Value(),
			End:         f.end.Value(),
			Description: f.description.Value(),
		}
	case dialog.DeleteConfirm:
		return interaction.DeleteConfirm{}
	}
	return nil
}

func (m *CalendarApp) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	f := &m.form

	if f.kind == dialog.DeleteConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			return m.dispatch(interaction.DeleteConfirm{})
		case "n", "N", "esc", "q":
			return m.dispatch(interaction.DialogCancel{})
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		return m.dispatch(interaction.DialogCancel{})
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	case "enter", "ctrl+s":
		return m.dispatch(f.submit())
	}

	if f.pickerFocused() {
		switch msg.String() {
		case "left", "h":
			f.cycleClient(-1)
		case "right", "l", " ":
			f.cycleClient(1)
		}
		return nil
	}
	return f.update(msg)
}

func (m *CalendarApp) renderDialog() string {
	coord := m.state().Dialog
	switch coord.Kind() {
	case dialog.ScheduleCreate:
		return m.renderCreateDialog(coord)
	case dialog.Edit:
		return m.renderEditDialog(coord)
	case dialog.DeleteConfirm:
		return m.renderDeleteDialog(coord)
	}
	return ""
}

func (m *CalendarApp) label(idx int, id string) string {
	if m.form.focus == idx {
		return FocusedLabelStyle.Render(i18n.T(id))
	}
	return LabelStyle.Render(i18n.T(id))
}

func (m *CalendarApp) renderPicker(idx int) string {
	label := "◀ " + utils.TruncateStr(m.form.clientLabel(), 30) + " ▶"
	if m.form.focus == idx {
		return PickerFocusedStyle.Render(label)
	}
	return ValueStyle.Render(label)
}

func renderInlineError(err error) string {
	if err == nil {
		return ""
	}
	return "\n" + ErrorTextStyle.Render(dialogErrorText(err)) + "\n"
}

func dialogErrorText(err error) string {
	switch {
	case errors.Is(err, dialog.ErrClientRequired):
		return i18n.T("dialog.error.client_required")
	case errors.Is(err, dialog.ErrEditFieldsRequired):
		return i18n.T("dialog.error.fields_required")
	case errors.Is(err, dialog.ErrInvalidStart):
		return i18n.T("dialog.error.invalid_start")
	case errors.Is(err, dialog.ErrInvalidEnd):
		return i18n.T("dialog.error.invalid_end")
	case errors.Is(err, dialog.ErrEndBeforeStart):
		return i18n.T("dialog.error.end_before_start")
	}
	return err.Error()
}

func (m *CalendarApp) renderCreateDialog(coord dialog.Coordinator) string {
	form := coord.Create
	var b strings.Builder

	b.WriteString(DialogTitleStyle.Render(i18n.T("dialog.schedule.title")))
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render(i18n.T("dialog.field.start")))
	b.WriteString(ValueStyle.Render(form.Start.Format(displayLayout)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render(i18n.T("dialog.field.end")))
	b.WriteString(ValueStyle.Render(form.End.Format(displayLayout)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render(i18n.T("dialog.field.duration")))
	b.WriteString(ValueStyle.Render(i18n.T("dialog.minutes", map[string]interface{}{
		"Minutes": int(form.Duration().Minutes()),
	})))
	b.WriteString("\n\n")

	b.WriteString(m.label(0, "dialog.field.client"))
	b.WriteString(m.renderPicker(0))
	b.WriteString("\n")
	b.WriteString(m.label(1, "dialog.field.description"))
	b.WriteString(m.form.description.View())
	b.WriteString("\n")

	b.WriteString(renderInlineError(coord.Err))
	b.WriteString("\n")
	b.WriteString(renderHelp([][2]string{
		{"tab", i18n.T("help.next_field")},
		{"←/→", i18n.T("help.client")},
		{"enter", i18n.T("help.save")},
		{"esc", i18n.T("help.cancel")},
	}))

	return DialogBoxStyle.Render(b.String())
}

func (m *CalendarApp) renderEditDialog(coord dialog.Coordinator) string {
	var b strings.Builder

	b.WriteString(DialogTitleStyle.Render(i18n.T("dialog.edit.title")))
	b.WriteString("\n\n")

	if target := coord.Target; target != nil {
		b.WriteString(LabelStyle.Render(i18n.T("dialog.field.current_start")))
		b.WriteString(ValueStyle.Render(target.Start.Format(displayLayout)))
		b.WriteString("\n")
		if target.HasEnd {
			b.WriteString(LabelStyle.Render(i18n.T("dialog.field.current_end")))
			b.WriteString(ValueStyle.Render(target.End.Format(displayLayout)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.label(0, "dialog.field.client"))
	b.WriteString(m.renderPicker(0))
	b.WriteString("\n")
	b.WriteString(m.label(1, "dialog.field.start"))
	b.WriteString(m.form.start.View())
	b.WriteString("\n")
	b.WriteString(m.label(2, "dialog.field.end"))
	b.WriteString(m.form.end.View())
	b.WriteString("\n")
	b.WriteString(m.label(3, "dialog.field.description"))
	b.WriteString(m.form.description.View())
	b.WriteString("\n")

	b.WriteString(renderInlineError(coord.Err))
	b.WriteString("\n")
	b.WriteString(renderHelp([][2]string{
		{"tab", i18n.T("help.next_field")},
		{"enter", i18n.T("help.save")},
		{"esc", i18n.T("help.cancel")},
	}))

	return DialogBoxStyle.Render(b.String())
}

func (m *CalendarApp) renderDeleteDialog(coord dialog.Coordinator) string {
	var b strings.Builder

	b.WriteString(DangerTitleStyle.Render(i18n.T("dialog.delete.title")))
	b.WriteString("\n\n")
	b.WriteString(i18n.T("dialog.delete.confirm"))
	b.WriteString("\n\n")

	if target := coord.Target; target != nil {
		b.WriteString(ValueStyle.Bold(true).Render(target.Title))
		b.WriteString("\n")
		when := target.Start.Format(displayLayout)
		if target.HasEnd {
			when = fmt.Sprintf("%s - %s", when, target.End.Format("3:04 PM"))
		}
		b.WriteString(HelpStyle.Render(when))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelp([][2]string{
		{"y", i18n.T("help.delete")},
		{"n", i18n.T("help.cancel")},
	}))

	return DangerBoxStyle.Render(b.String())
}

// renderHelp renders key/description pairs in one line
func renderHelp(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, HelpKeyStyle.Render(p[0])+" "+HelpStyle.Render(p[1]))
	}
	return strings.Join(parts, HelpStyle.Render("  •  "))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"apptcal/config"
)

type rowType int

const (
	rowTypeField rowType = iota
	rowTypeAction
	rowTypeSeparator
)

type configRow struct {
	key     string
	label   string
	value   string
	rowType rowType

	// general or smtp setting; nil for provider rows
	field *configField
	// provider rows: index into AIProviders and its field
	provider int
	pfield   *providerField
}

func (r configRow) secret() bool {
	return (r.field != nil && r.field.secret) || (r.pfield != nil && r.pfield.secret)
}

// ConfigTUI views and edits config.yml
type ConfigTUI struct {
	cfg      config.Config
	rows     []configRow
	cursor   int
	editMode bool
	editing  bool
	input    textinput.Model
	dirty    bool
	confirm  bool
	loadErr  error
	saveErr  error
	fieldErr string
	width    int
	height   int

	save func(config.Config) error
	load func() (config.Config, error)
}

func NewConfigTUI() ConfigTUI {
	cfg, err := config.Load()
	return newConfigTUI(cfg, err, config.Config.Save, config.Load)
}

func newConfigTUI(cfg config.Config, loadErr error, save func(config.Config) error, load func() (config.Config, error)) ConfigTUI {
	m := ConfigTUI{
		cfg:     cfg,
		loadErr: loadErr,
		width:   80,
		height:  24,
		save:    save,
		load:    load,
	}
	m.buildRows()
	return m
}

func (m *ConfigTUI) buildRows() {
	m.rows = nil
	addFields := func(fields []configField) {
		for i := range fields {
			f := &fields[i]
			value := f.get(&m.cfg)
			if f.secret {
				value = maskSecret(value)
			}
			m.rows = append(m.rows, configRow{key: f.key, label: f.label, value: value, rowType: rowTypeField, field: f, provider: -1})
		}
	}

	addFields(generalFields)
	m.rows = append(m.rows, configRow{key: "separator", label: "Invitations", rowType: rowTypeSeparator})
	addFields(smtpFields)

	for i := range m.cfg.AIProviders {
		p := &m.cfg.AIProviders[i]
		m.rows = append(m.rows, configRow{key: "separator", label: fmt.Sprintf("AI Provider %d", i+1), rowType: rowTypeSeparator})
		for j := range providerFields {
			f := &providerFields[j]
			value := f.get(p)
			if f.secret {
				value = maskSecret(value)
			}
			m.rows = append(m.rows, configRow{key: f.key, label: f.label, value: value, rowType: rowTypeField, provider: i, pfield: f})
		}
		m.rows = append(m.rows, configRow{key: "delete", label: "Delete Provider", rowType: rowTypeAction, provider: i})
	}

	// Actions (only in edit mode)
	if m.editMode {
		m.rows = append(m.rows,
			configRow{key: "separator", label: "Actions", rowType: rowTypeSeparator},
			configRow{key: "add", label: "Add AI Provider", rowType: rowTypeAction, provider: -1},
			configRow{key: "save", label: "Save Changes", rowType: rowTypeAction, provider: -1},
			configRow{key: "cancel", label: "Cancel", rowType: rowTypeAction, provider: -1},
		)
	}
}

func (m ConfigTUI) Init() tea.Cmd {
	return nil
}

func (m ConfigTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.confirm {
			return m.updateConfirm(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		if m.editMode {
			return m.updateEditMode(msg)
		}
		return m.updateReadOnly(msg)
	}
	return m, nil
}

func (m ConfigTUI) updateReadOnly(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "e":
		if m.loadErr != nil {
			return m, nil
		}
		m.editMode = true
		m.buildRows()
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfigTUI) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter", " ":
		return m.handleSelect()
	case "q", "esc", "ctrl+c":
		if m.dirty {
			m.confirm = true
			return m, nil
		}
		m.leaveEditMode()
	}
	return m, nil
}

func (m ConfigTUI) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.saveField()
	case "esc":
		m.editing = false
		m.fieldErr = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConfigTUI) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "s":
		m.confirm = false
		m.writeConfig()
	case "n", "d":
		m.confirm = false
		m.saveErr = nil
		m.dirty = false
		m.cfg, m.loadErr = m.load()
		m.leaveEditMode()
	case "esc", "c":
		m.confirm = false
	}
	return m, nil
}

// writeConfig saves and leaves edit mode, or keeps editing with the error shown
func (m *ConfigTUI) writeConfig() {
	if err := m.save(m.cfg); err != nil {
		m.saveErr = err
		return
	}
	m.saveErr = nil
	m.dirty = false
	m.leaveEditMode()
}

func (m *ConfigTUI) leaveEditMode() {
	m.editMode = false
	m.buildRows()
	m.clampCursor()
}

func (m *ConfigTUI) moveCursor(delta int) {
	newCursor := m.cursor + delta
	for newCursor >= 0 && newCursor < len(m.rows) {
		if m.rows[newCursor].rowType != rowTypeSeparator {
			m.cursor = newCursor
			return
		}
		newCursor += delta
	}
}

func (m *ConfigTUI) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	// Skip separators
	for m.cursor < len(m.rows) && m.rows[m.cursor].rowType == rowTypeSeparator {
		m.cursor++
	}
}

func (m ConfigTUI) handleSelect() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.cursor]

	switch row.key {
	case "add":
		m.cfg.AIProviders = append(m.cfg.AIProviders, config.AIProvider{Type: config.AIProviderTypeCLI})
		m.dirty = true
		m.buildRows()
		return m, nil

	case "save":
		m.writeConfig()
		return m, nil

	case "cancel":
		if m.dirty {
			m.confirm = true
			return m, nil
		}
		m.leaveEditMode()
		return m, nil

	case "delete":
		if row.provider >= 0 && row.provider < len(m.cfg.AIProviders) {
			m.cfg.AIProviders = append(m.cfg.AIProviders[:row.provider], m.cfg.AIProviders[row.provider+1:]...)
			m.dirty = true
			m.buildRows()
			m.clampCursor()
		}
		return m, nil
	}

	if row.rowType != rowTypeField {
		return m, nil
	}

	m.editing = true
	m.fieldErr = ""
	m.input = textinput.New()
	m.input.Focus()
	m.input.CharLimit = 200
	m.input.Width = 40
	m.input.Prompt = ""

	if row.secret() {
		m.input.Placeholder = "Enter new value..."
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	} else {
		m.input.SetValue(m.actualValue(row))
	}
	return m, textinput.Blink
}

func (m ConfigTUI) actualValue(row configRow) string {
	switch {
	case row.field != nil:
		return row.field.get(&m.cfg)
	case row.pfield != nil && row.provider < len(m.cfg.AIProviders):
		return row.pfield.get(&m.cfg.AIProviders[row.provider])
	}
	return ""
}

func (m ConfigTUI) saveField() (tea.Model, tea.Cmd) {
	row := m.rows[m.cursor]
	value := strings.TrimSpace(sanitizeValue(m.input.Value()))
	m.fieldErr = ""

	// An empty secret keeps the old one
	if row.secret() && value == "" {
		m.editing = false
		return m, nil
	}
	if value == m.actualValue(row) {
		m.editing = false
		return m, nil
	}

	var err error
	switch {
	case row.field != nil:
		err = row.field.set(&m.cfg, value)
	case row.pfield != nil && row.provider < len(m.cfg.AIProviders):
		err = row.pfield.set(&m.cfg.AIProviders[row.provider], value)
	}
	if err != nil {
		m.fieldErr = err.Error()
		return m, nil
	}

	m.dirty = true
	m.editing = false
	m.buildRows()
	return m, nil
}

func (m ConfigTUI) View() string {
	var content strings.Builder

	// Title
	title := "⚙  apptcal Configuration"
	if m.dirty {
		title += errorStyle.Render(" (unsaved)")
	}
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n\n")

	// Errors
	if m.loadErr != nil {
		content.WriteString(errorStyle.Render("⚠ Error loading config: " + m.loadErr.Error()))
		content.WriteString("\n\n")
	}
	if m.saveErr != nil {
		content.WriteString(errorStyle.Render("⚠ Error saving config: " + m.saveErr.Error()))
		content.WriteString("\n\n")
	}

	// Mode indicator
	if m.editMode {
		content.WriteString(sectionStyle.Render("━━━ Edit Mode ━━━"))
		content.WriteString("\n\n")
	}

	for i, row := range m.rows {
		content.WriteString(m.renderRow(i, row))
		content.WriteString("\n")
	}

	if m.confirm {
		content.WriteString("\n")
		dialog := confirmStyle.Render(
			errorStyle.Render("Unsaved changes!") + "\n\n" +
				buttonSuccessStyle.Render(" S  Save ") + "  " +
				buttonDangerStyle.Render(" D  Discard ") + "  " +
				buttonStyle.Render(" C  Cancel "),
		)
		content.WriteString(dialog)
	}

	// Hints
	content.WriteString("\n")
	switch {
	case m.editing:
		content.WriteString(hintStyle.Render("Enter to save • Esc to cancel"))
	case m.editMode:
		content.WriteString(hintStyle.Render("↑↓ Navigate • Enter/Space to edit • Esc to exit"))
	case m.loadErr != nil:
		content.WriteString(hintStyle.Render("↑↓ Navigate • Q to quit (editing disabled)"))
	default:
		content.WriteString(hintStyle.Render("↑↓ Navigate • E to edit • Q to quit"))
	}

	box := boxStyle
	if m.editMode {
		box = editBoxStyle
	}
	return box.Render(content.String())
}

// actionButton styles for each action: normal and selected
var actionButtons = map[string]struct {
	icon  string
	style lipgloss.Style
}{
	"add":    {"+", buttonSuccessStyle},
	"delete": {"✕", buttonDangerStyle},
	"save":   {"✓", buttonSuccessStyle},
	"cancel": {"✕", buttonStyle},
}

func (m ConfigTUI) renderRow(idx int, row configRow) string {
	selected := idx == m.cursor

	if row.rowType == rowTypeSeparator {
		return "\n" + sectionStyle.Render("─── "+row.label+" ───")
	}

	if row.rowType == rowTypeAction {
		text := " " + row.label + " "
		style := buttonStyle
		if b, ok := actionButtons[row.key]; ok {
			text = " " + b.icon + text
			style = b.style
		}
		if selected {
			return cursorStyle.Render("▸ ") + buttonSelectedStyle.Render(text)
		}
		return "  " + style.Render(text)
	}

	label := labelStyle.Render(row.label)
	sanitized := sanitizeValue(row.value)
	value := valueStyle.Render(sanitized)
	if sanitized == "" {
		value = emptyStyle.Render("(not set)")
	}

	if m.editing && selected {
		line := cursorStyle.Render("▸ ") + label + m.input.View()
		if m.fieldErr != "" {
			line += "  " + errorStyle.Render("⚠ "+m.fieldErr)
		}
		return line
	}
	if selected {
		return cursorStyle.Render("▸ ") + label + selectedStyle.Render(" "+sanitized+" ")
	}
	return "  " + label + value
}

func RunConfigTUI() error {
	p := tea.NewProgram(NewConfigTUI(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

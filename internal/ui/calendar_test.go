package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/config"
	"apptcal/internal/calview"
	"apptcal/internal/dialog"
	"apptcal/internal/interaction"
	"apptcal/internal/model"
	"apptcal/internal/store"
)

type fakeStore struct {
	appointments []model.Appointment
	clients      []model.Client

	created []model.AppointmentInput
	updated map[int64]model.AppointmentInput
	deleted []int64

	writeErr error
	lists    int
}

func (s *fakeStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	s.lists++
	return s.appointments, nil
}

func (s *fakeStore) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.clients, nil
}

func (s *fakeStore) CreateAppointment(ctx context.Context, in model.AppointmentInput) (*model.Appointment, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	s.created = append(s.created, in)
	return &model.Appointment{ID: 99}, nil
}

func (s *fakeStore) UpdateAppointment(ctx context.Context, id int64, in model.AppointmentInput) (*model.Appointment, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	if s.updated == nil {
		s.updated = map[int64]model.AppointmentInput{}
	}
	s.updated[id] = in
	return &model.Appointment{ID: id}, nil
}

func (s *fakeStore) DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	s.deleted = append(s.deleted, id)
	return &model.Appointment{ID: id}, nil
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, time.Local)
}

// newTestApp shows the week of Jan 7 2024 with every slot row on screen:
// day columns are ten cells wide and 09:00 is surface row 19.
func newTestApp(t *testing.T, fs *fakeStore) *CalendarApp {
	t.Helper()
	// a blinking cursor re-arms its timer forever under drain
	inputCursor = cursor.CursorStatic
	t.Cleanup(func() { inputCursor = cursor.CursorBlink })

	cfg := config.DefaultConfig()
	m := newCalendarApp(fs, cfg, func() time.Time { return at(10, 8, 0) })

	rows := m.geometry().SlotsPerDay()
	run(m, tea.WindowSizeMsg{Width: calview.GutterWidth + 70, Height: headerHeight + footerHeight + calview.HeaderRows + rows})
	run(m, m.Init())
	return m
}

// run feeds msg to the app and keeps executing the commands it returns
func run(m *CalendarApp, msg tea.Msg) {
	if cmd, ok := msg.(tea.Cmd); ok {
		drain(m, cmd)
		return
	}
	if msg == nil {
		return
	}
	_, cmd := m.Update(msg)
	drain(m, cmd)
}

func drain(m *CalendarApp, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case cursor.BlinkMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case nil:
	default:
		run(m, msg)
	}
}

func leftDown(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func pointerTo(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func leftUp(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func rightClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionPress, Button: tea.MouseButtonRight}
}

func sampleStore() *fakeStore {
	end := at(10, 9, 30)
	return &fakeStore{
		clients: []model.Client{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Bo"}},
		appointments: []model.Appointment{
			{ID: 7, ClientID: 1, ClientName: "Ada", AppointmentTime: at(10, 9, 0), EndTime: &end, Description: "Checkup"},
		},
	}
}

const (
	wednesdayX = calview.GutterWidth + 3*10
	saturdayX  = calview.GutterWidth + 6*10
	nineRow    = calview.HeaderRows + 18
)

func TestLoadsOnInit(t *testing.T) {
	m := newTestApp(t, sampleStore())

	st := m.state()
	require.Len(t, st.Events, 1)
	assert.Equal(t, "Ada - Checkup", st.Events[0].Title)
	assert.Len(t, m.clients, 2)
}

func TestDragMovesAppointment(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	run(m, leftDown(wednesdayX+2, nineRow))
	run(m, pointerTo(saturdayX+2, nineRow))
	assert.Equal(t, interaction.Dragging, m.state().Mode)
	require.NotNil(t, m.state().Drag.Target)

	run(m, leftUp(saturdayX+2, nineRow))

	in, ok := fs.updated[7]
	require.True(t, ok, "drop issues an update")
	assert.True(t, at(13, 9, 0).Equal(in.AppointmentTime))
	assert.True(t, at(13, 9, 30).Equal(*in.EndTime))
	assert.Equal(t, int64(1), *in.ClientID)
	assert.Nil(t, in.Description)

	st := m.state()
	assert.Equal(t, interaction.Idle, st.Mode)
	assert.Nil(t, st.Drag)
	assert.Zero(t, st.Pending)
	assert.Equal(t, 2, fs.lists, "the write is followed by a re-fetch")
}

func TestResizeFromLastColumn(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	run(m, leftDown(wednesdayX+9, nineRow))
	run(m, pointerTo(wednesdayX+9, nineRow+2))
	assert.Equal(t, interaction.Resizing, m.state().Mode)
	run(m, leftUp(wednesdayX+9, nineRow+2))

	in, ok := fs.updated[7]
	require.True(t, ok)
	assert.True(t, at(10, 9, 0).Equal(in.AppointmentTime))
	assert.True(t, at(10, 10, 30).Equal(*in.EndTime))
}

func TestClickSelectsAppointment(t *testing.T) {
	m := newTestApp(t, sampleStore())

	run(m, leftDown(wednesdayX+2, nineRow))
	run(m, leftUp(wednesdayX+2, nineRow))

	st := m.state()
	require.NotNil(t, st.Selected)
	assert.Equal(t, int64(7), st.Selected.ID)
	assert.Equal(t, interaction.Idle, st.Mode)
}

func TestDoubleClickSlotThenCreate(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	x := calview.GutterWidth + 1*10 + 3
	run(m, leftDown(x, nineRow))
	run(m, leftUp(x, nineRow))
	run(m, leftDown(x, nineRow))

	st := m.state()
	require.Equal(t, interaction.DialogOpen, st.Mode)
	require.Equal(t, dialog.ScheduleCreate, st.Dialog.Kind())
	assert.True(t, at(8, 9, 0).Equal(st.Dialog.Create.Start))

	// submit without a client
	run(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.ErrorIs(t, m.state().Dialog.Err, dialog.ErrClientRequired)
	assert.Empty(t, fs.created)

	run(m, tea.KeyMsg{Type: tea.KeyRight})
	run(m, tea.KeyMsg{Type: tea.KeyTab})
	run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Cleaning")})
	run(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, fs.created, 1)
	assert.Equal(t, int64(1), *fs.created[0].ClientID)
	assert.Equal(t, "Cleaning", *fs.created[0].Description)
	assert.True(t, at(8, 9, 0).Equal(fs.created[0].AppointmentTime))
	assert.True(t, at(8, 9, 30).Equal(*fs.created[0].EndTime))
	assert.Equal(t, interaction.Idle, m.state().Mode)
	assert.Nil(t, m.state().SlotRange)
}

func TestContextMenuDeleteFailureShowsBanner(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	run(m, rightClick(wednesdayX+2, nineRow))
	st := m.state()
	require.Equal(t, interaction.ContextMenuOpen, st.Mode)
	assert.Equal(t, []interaction.MenuItem{interaction.ItemEdit, interaction.ItemDelete}, st.Menu.Items)

	// second row of the menu is Delete
	run(m, leftDown(st.Menu.X+1, st.Menu.Y+1))
	require.Equal(t, dialog.DeleteConfirm, m.state().Dialog.Kind())

	fs.writeErr = &store.Error{Op: "delete appointment", Status: 404, Message: "Appointment not found"}
	run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})

	st = m.state()
	assert.Equal(t, interaction.Idle, st.Mode)
	var we *interaction.WriteError
	require.True(t, errors.As(st.Banner, &we))
	assert.Equal(t, interaction.OpDelete, we.Op)
	assert.Equal(t, "Appointment not found", store.Message(we.Err))

	// any key dismisses the banner
	run(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.state().Banner)
}

func TestEscapeCancelsDrag(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	run(m, leftDown(wednesdayX+2, nineRow))
	run(m, pointerTo(saturdayX+2, nineRow))
	run(m, tea.KeyMsg{Type: tea.KeyEsc})
	run(m, leftUp(saturdayX+2, nineRow))

	assert.Equal(t, interaction.Idle, m.state().Mode)
	assert.Empty(t, fs.updated)
}

func TestRightClickDuringDragKeepsGesture(t *testing.T) {
	fs := sampleStore()
	m := newTestApp(t, fs)

	run(m, leftDown(wednesdayX+2, nineRow))
	run(m, pointerTo(saturdayX+2, nineRow))
	require.Equal(t, interaction.Dragging, m.state().Mode)

	run(m, rightClick(saturdayX+2, nineRow))
	run(m, tea.MouseMsg{X: saturdayX + 2, Y: nineRow + headerHeight, Action: tea.MouseActionRelease, Button: tea.MouseButtonRight})
	assert.Equal(t, interaction.Dragging, m.state().Mode)
	assert.Nil(t, m.state().Menu)
	assert.Empty(t, fs.updated)

	run(m, leftUp(saturdayX+2, nineRow))
	in, ok := fs.updated[7]
	require.True(t, ok, "the held drag still drops")
	assert.True(t, at(13, 9, 0).Equal(in.AppointmentTime))
	assert.Equal(t, interaction.Idle, m.state().Mode)

	x := calview.GutterWidth + 1*10 + 3
	run(m, leftDown(x, nineRow))
	run(m, leftUp(x, nineRow))
	assert.Equal(t, interaction.Idle, m.state().Mode)
	assert.NotNil(t, m.state().SlotRange, "later clicks reach the calendar again")
}

func TestKeyboardViewSwitch(t *testing.T) {
	m := newTestApp(t, sampleStore())

	run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	assert.Equal(t, interaction.Month, m.state().View)

	run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, time.February, m.state().Focus.Month())
	assert.Equal(t, time.February, m.cursor.Month())
}

func TestViewRendersGrid(t *testing.T) {
	m := newTestApp(t, sampleStore())

	out := m.renderSurface()
	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, m.surfaceHeight())

	plain := make([]string, len(out.cells))
	for y := range out.cells {
		var b strings.Builder
		for _, c := range out.cells[y] {
			if !c.wide {
				b.WriteRune(c.r)
			}
		}
		plain[y] = b.String()
	}
	assert.Contains(t, plain[0], "Wed 1/10")
	assert.Contains(t, plain[nineRow], "Ada - Ch…"+edgeMarker)
	assert.True(t, strings.HasPrefix(plain[nineRow], "09:00"))
}

func TestCanvasText(t *testing.T) {
	c := newCanvas(6, 1)
	c.text(0, 0, 6, "日本語です", toneNormal)

	assert.Equal(t, '日', c.cells[0][0].r)
	assert.True(t, c.cells[0][1].wide)
	assert.Equal(t, '…', c.cells[0][4].r)

	c = newCanvas(4, 1)
	c.text(2, 0, 10, "abcd", toneNormal)
	assert.Equal(t, 'b', c.cells[0][3].r, "text is clipped to the canvas")
}

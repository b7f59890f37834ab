package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"apptcal/config"
	"apptcal/internal/calview"
	"apptcal/internal/dialog"
	"apptcal/internal/interaction"
	"apptcal/internal/logging"
	"apptcal/internal/model"
)

const (
	// headerHeight is the title bar plus a blank line above the surface
	headerHeight = 2
	// footerHeight is the banner line plus two help rows
	footerHeight = 3
)

// Store is the subset of the store client the calendar needs
type Store interface {
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	CreateAppointment(ctx context.Context, in model.AppointmentInput) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, in model.AppointmentInput) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error)
}

// CalendarApp is the calendar TUI model. It owns the interaction machine and
// turns terminal input into machine events and machine effects into store calls.
type CalendarApp struct {
	store   Store
	cfg     config.Config
	machine *interaction.Machine
	clients []model.Client

	width  int
	height int
	scroll int

	// keyboard slot cursor
	cursor  time.Time
	menuIdx int

	press     *press
	lastPress lastPress

	form dialogForm
	now  func() time.Time
}

// Messages
type appointmentsLoadedMsg struct {
	appointments []model.Appointment
}

type clientsLoadedMsg struct {
	clients []model.Client
}

type loadFailedMsg struct {
	err error
}

// writeDoneMsg reports a write and, when it succeeded, the re-fetch after it
type writeDoneMsg struct {
	op           interaction.Op
	err          error
	appointments []model.Appointment
	listErr      error
}

// NewCalendarApp creates a new calendar TUI
func NewCalendarApp(store Store, cfg config.Config) *CalendarApp {
	return newCalendarApp(store, cfg, time.Now)
}

func newCalendarApp(store Store, cfg config.Config, now func() time.Time) *CalendarApp {
	view, err := interaction.ParseView(cfg.DefaultView)
	if err != nil {
		logging.Log.Warn("invalid default_view, using week", zap.String("default_view", cfg.DefaultView))
	}

	icfg := interaction.Config{
		Slot:            cfg.Slot(),
		DefaultSchedule: 30 * time.Minute,
		WeekStart:       cfg.FirstWeekday(),
		MenuOffset:      cfg.MenuOffset,
		Policy:          dialog.Policy{RequireEndAfterStart: cfg.RequireEndAfterStart},
	}

	m := &CalendarApp{
		store: store,
		cfg:   cfg,
		now:   now,
	}
	m.machine = interaction.NewMachine(interaction.NewState(icfg, view, now()))
	m.cursor = m.snapToSlot(now())
	return m
}

func (m *CalendarApp) Init() tea.Cmd {
	return tea.Batch(
		m.loadAppointments(),
		m.loadClients(),
	)
}

func (m *CalendarApp) loadAppointments() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		appointments, err := store.ListAppointments(context.Background())
		if err != nil {
			return loadFailedMsg{err}
		}
		return appointmentsLoadedMsg{appointments}
	}
}

func (m *CalendarApp) loadClients() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		clients, err := store.ListClients(context.Background())
		if err != nil {
			return loadFailedMsg{err}
		}
		return clientsLoadedMsg{clients}
	}
}

// runEffect performs one write and the full re-fetch that completes it
func (m *CalendarApp) runEffect(effect interaction.Effect) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx := context.Background()
		op := interaction.EffectOp(effect)

		var err error
		switch e := effect.(type) {
		case interaction.CreateAppointment:
			_, err = store.CreateAppointment(ctx, e.Input)
		case interaction.UpdateAppointment:
			_, err = store.UpdateAppointment(ctx, e.ID, e.Input)
		case interaction.DeleteAppointment:
			_, err = store.DeleteAppointment(ctx, e.ID)
		}
		if err != nil {
			logging.Log.Warn("appointment write failed", zap.Stringer("op", op), zap.Error(err))
			return writeDoneMsg{op: op, err: err}
		}

		appointments, listErr := store.ListAppointments(ctx)
		return writeDoneMsg{op: op, appointments: appointments, listErr: listErr}
	}
}

// dispatch feeds ev to the machine and schedules the writes it asks for
func (m *CalendarApp) dispatch(ev interaction.Event) tea.Cmd {
	effects := m.machine.Dispatch(ev)
	m.syncForm()

	var cmds []tea.Cmd
	for _, effect := range effects {
		cmds = append(cmds, m.runEffect(effect))
	}
	return tea.Batch(cmds...)
}

func (m *CalendarApp) state() interaction.State {
	return m.machine.State()
}

func (m *CalendarApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll = m.geometry().ClampScroll(m.scroll)
		m.revealCursor()
		return m, nil

	case appointmentsLoadedMsg:
		return m, m.dispatch(interaction.Loaded{Events: calview.ToEvents(msg.appointments, m.cfg.Slot())})

	case clientsLoadedMsg:
		m.clients = msg.clients
		m.form.clients = msg.clients
		if coord := m.state().Dialog; coord.Kind() == dialog.Edit && m.form.clientIdx < 0 {
			m.form.clientIdx = m.form.indexOf(coord.Edit.ClientID)
		}
		return m, nil

	case loadFailedMsg:
		return m, m.dispatch(interaction.LoadFailed{Err: msg.err})

	case writeDoneMsg:
		return m, m.writeDone(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.state().Mode == interaction.DialogOpen {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m *CalendarApp) writeDone(msg writeDoneMsg) tea.Cmd {
	if msg.err != nil {
		return m.dispatch(interaction.WriteFailed{Op: msg.op, Err: msg.err})
	}

	var cmds []tea.Cmd
	if msg.listErr == nil {
		cmds = append(cmds, m.dispatch(interaction.Loaded{Events: calview.ToEvents(msg.appointments, m.cfg.Slot())}))
	}
	cmds = append(cmds, m.dispatch(interaction.WriteSucceeded{Op: msg.op}))
	if msg.listErr != nil {
		cmds = append(cmds, m.dispatch(interaction.LoadFailed{Err: msg.listErr}))
	}
	return tea.Batch(cmds...)
}

// syncForm rebuilds the dialog inputs whenever a different dialog opens
func (m *CalendarApp) syncForm() {
	coord := m.state().Dialog
	if coord.Kind() == m.form.kind {
		return
	}
	m.form = newDialogForm(coord, m.clients)
}

func (m *CalendarApp) surfaceHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < calview.HeaderRows+1 {
		h = calview.HeaderRows + 1
	}
	return h
}

func (m *CalendarApp) geometry() calview.Geometry {
	st := m.state()
	return calview.Geometry{
		View:      st.View,
		Focus:     st.Focus,
		WeekStart: m.cfg.FirstWeekday(),
		Slot:      m.cfg.Slot(),
		DayStart:  m.cfg.DayStartHour,
		DayEnd:    m.cfg.DayEndHour,
		Width:     m.width,
		Height:    m.surfaceHeight(),
		Scroll:    m.scroll,
	}
}

package ui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"apptcal/internal/calview"
	"apptcal/internal/interaction"
	"apptcal/internal/model"
)

// press is a left button held down on the surface
type press struct {
	// slot is the slot under the pointer when pressed
	slot   interaction.Range
	onSlot bool

	hit  *calview.Hit
	grab time.Duration
	// moved is set once the held appointment started a drag or resize
	moved bool
}

// lastPress remembers the previous left press for double-click detection
type lastPress struct {
	at      time.Time
	eventID int64
	slot    time.Time
}

func (m *CalendarApp) isDoubleClick(eventID int64, slot time.Time) bool {
	prev := m.lastPress
	if prev.at.IsZero() || m.now().Sub(prev.at) > m.cfg.DoubleClick() {
		return false
	}
	if eventID != 0 {
		return prev.eventID == eventID
	}
	return prev.eventID == 0 && prev.slot.Equal(slot)
}

func (m *CalendarApp) handleMouse(msg tea.MouseMsg) tea.Cmd {
	st := m.state()
	if st.Mode == interaction.DialogOpen {
		return nil
	}

	x, y := msg.X, msg.Y-headerHeight
	g := m.geometry()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll = g.ClampScroll(m.scroll - 1)
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll = g.ClampScroll(m.scroll + 1)
		return nil
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		// the held left press still owns the gesture until its release
		if m.press != nil || st.Mode == interaction.Dragging || st.Mode == interaction.Resizing {
			return nil
		}
		return m.openMenu(x, y)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.leftPress(x, y)
	case msg.Action == tea.MouseActionMotion:
		return m.pointerMotion(x, y)
	case msg.Action == tea.MouseActionRelease && msg.Button != tea.MouseButtonRight:
		return m.leftRelease(x, y)
	}
	return nil
}

func (m *CalendarApp) openMenu(x, y int) tea.Cmd {
	st := m.state()
	g := m.geometry()

	ev := interaction.ContextMenu{X: x, Y: y}
	if hit, ok := g.EventAt(x, y, st.Events); ok {
		ev.Hit = &hit.Event
	}
	m.menuIdx = 0
	return m.dispatch(ev)
}

func (m *CalendarApp) leftPress(x, y int) tea.Cmd {
	var cmds []tea.Cmd

	if st := m.state(); st.Mode == interaction.ContextMenuOpen {
		if item, ok := m.menuItemAt(x, y); ok {
			return m.dispatch(m.menuEvent(item))
		}
		cmds = append(cmds, m.dispatch(interaction.MenuDismiss{}))
	}

	st := m.state()
	g := m.geometry()
	slot, onGrid := g.SlotAt(x, y)
	if !onGrid {
		return tea.Batch(cmds...)
	}

	if hit, ok := g.EventAt(x, y, st.Events); ok {
		if m.isDoubleClick(hit.Event.ID, time.Time{}) {
			m.lastPress = lastPress{}
			return tea.Batch(append(cmds, m.dispatch(interaction.AppointmentDoubleClick{Event: hit.Event}))...)
		}
		m.lastPress = lastPress{at: m.now(), eventID: hit.Event.ID}
		m.press = &press{slot: slot, hit: &hit, grab: g.GrabOffset(hit.Event, slot)}
		return tea.Batch(cmds...)
	}

	m.cursor = m.snapToSlot(slot.Start)
	if m.isDoubleClick(0, slot.Start) {
		m.lastPress = lastPress{}
		return tea.Batch(append(cmds, m.dispatch(interaction.SlotDoubleClick{Range: slot}))...)
	}
	m.lastPress = lastPress{at: m.now(), slot: slot.Start}
	m.press = &press{slot: slot, onSlot: true}
	return tea.Batch(append(cmds, m.dispatch(interaction.SlotSelectStart{Range: slot}))...)
}

func (m *CalendarApp) pointerMotion(x, y int) tea.Cmd {
	p := m.press
	if p == nil {
		return nil
	}
	g := m.geometry()
	r, ok := g.SlotAt(x, y)

	if p.onSlot {
		if !ok {
			return nil
		}
		return m.dispatch(interaction.SlotSelectExtend{Range: union(p.slot, r)})
	}

	ev := p.hit.Event
	var cmds []tea.Cmd
	if !p.moved {
		if !ok || r.Start.Equal(p.slot.Start) {
			return nil
		}
		p.moved = true
		allDay := g.View == interaction.Month
		if p.hit.Edge {
			cmds = append(cmds, m.dispatch(interaction.ResizeStart{Event: ev, AllDay: allDay}))
		} else {
			cmds = append(cmds, m.dispatch(interaction.DragStart{Event: ev, AllDay: allDay}))
		}
	}

	if target, ok := m.dragTarget(p, x, y); ok {
		cmds = append(cmds, m.dispatch(interaction.DragOver{Target: target}))
	}
	return tea.Batch(cmds...)
}

func (m *CalendarApp) dragTarget(p *press, x, y int) (interaction.Range, bool) {
	g := m.geometry()
	if m.state().Mode == interaction.Resizing {
		return g.ResizeTarget(p.hit.Event, x, y)
	}
	return g.DropTarget(p.hit.Event, p.grab, x, y)
}

func (m *CalendarApp) leftRelease(x, y int) tea.Cmd {
	p := m.press
	m.press = nil
	if p == nil {
		return nil
	}
	st := m.state()
	g := m.geometry()

	if p.onSlot {
		final := p.slot
		if r, ok := g.SlotAt(x, y); ok {
			final = union(p.slot, r)
		} else if st.Selecting != nil {
			final = *st.Selecting
		}
		return m.dispatch(interaction.SlotClick{Range: final})
	}

	if !p.moved {
		return m.dispatch(interaction.AppointmentClick{Event: p.hit.Event})
	}

	target, ok := m.dragTarget(p, x, y)
	if !ok {
		return m.dispatch(interaction.DragCancel{})
	}
	if st.Mode == interaction.Resizing {
		return m.dispatch(interaction.ResizeEnd{Target: target})
	}
	return m.dispatch(interaction.Drop{Target: target})
}

func union(a, b interaction.Range) interaction.Range {
	r := a
	if b.Start.Before(r.Start) {
		r.Start = b.Start
	}
	if b.End.After(r.End) {
		r.End = b.End
	}
	return r
}

func (m *CalendarApp) menuEvent(item interaction.MenuItem) interaction.Event {
	switch item {
	case interaction.ItemEdit:
		return interaction.MenuEdit{}
	case interaction.ItemDelete:
		return interaction.MenuDelete{}
	default:
		return interaction.MenuSchedule{Now: m.now()}
	}
}

func (m *CalendarApp) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	if m.state().Banner != nil {
		cmds = append(cmds, m.dispatch(interaction.DismissBanner{}))
	}

	switch m.state().Mode {
	case interaction.DialogOpen:
		cmds = append(cmds, m.handleDialogKey(msg))
	case interaction.ContextMenuOpen:
		cmds = append(cmds, m.handleMenuKey(msg))
	case interaction.Dragging, interaction.Resizing, interaction.SlotSelecting:
		if key.Matches(msg, keys.Cancel) {
			m.press = nil
			cmds = append(cmds, m.dispatch(interaction.DragCancel{}))
		}
	default:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleCalendarKey(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *CalendarApp) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	menu := m.state().Menu
	if menu == nil {
		return m.dispatch(interaction.MenuDismiss{})
	}
	switch msg.String() {
	case "up", "k":
		if m.menuIdx > 0 {
			m.menuIdx--
		}
	case "down", "j":
		if m.menuIdx < len(menu.Items)-1 {
			m.menuIdx++
		}
	case "enter", " ":
		if m.menuIdx < len(menu.Items) {
			return m.dispatch(m.menuEvent(menu.Items[m.menuIdx]))
		}
	case "esc", "q":
		return m.dispatch(interaction.MenuDismiss{})
	}
	return nil
}

func (m *CalendarApp) handleCalendarKey(msg tea.KeyMsg) tea.Cmd {
	st := m.state()
	g := m.geometry()

	switch {
	case key.Matches(msg, keys.Month):
		return m.changeView(interaction.Month)
	case key.Matches(msg, keys.Week):
		return m.changeView(interaction.Week)
	case key.Matches(msg, keys.Day):
		return m.changeView(interaction.Day)
	case key.Matches(msg, keys.Prev):
		m.cursor = shiftCursor(m.cursor, st.View, -1)
		return m.dispatch(interaction.Navigate{Direction: interaction.Prev, Now: m.now()})
	case key.Matches(msg, keys.Next):
		m.cursor = shiftCursor(m.cursor, st.View, 1)
		return m.dispatch(interaction.Navigate{Direction: interaction.Next, Now: m.now()})
	case key.Matches(msg, keys.Today):
		m.cursor = m.snapToSlot(m.now())
		cmd := m.dispatch(interaction.Navigate{Direction: interaction.Today, Now: m.now()})
		m.revealCursor()
		return cmd
	case key.Matches(msg, keys.Left):
		return m.moveCursor(m.cursor.AddDate(0, 0, -1))
	case key.Matches(msg, keys.Right):
		return m.moveCursor(m.cursor.AddDate(0, 0, 1))
	case key.Matches(msg, keys.Up):
		if st.View == interaction.Month {
			return m.moveCursor(m.cursor.AddDate(0, 0, -7))
		}
		return m.moveCursorInDay(m.cursor.Add(-m.cfg.Slot()))
	case key.Matches(msg, keys.Down):
		if st.View == interaction.Month {
			return m.moveCursor(m.cursor.AddDate(0, 0, 7))
		}
		return m.moveCursorInDay(m.cursor.Add(m.cfg.Slot()))
	case key.Matches(msg, keys.ScrollUp):
		m.scroll = g.ClampScroll(m.scroll - g.VisibleRows())
	case key.Matches(msg, keys.ScrollDn):
		m.scroll = g.ClampScroll(m.scroll + g.VisibleRows())
	case key.Matches(msg, keys.Select):
		return m.dispatch(interaction.SlotClick{Range: m.cursorRange()})
	case key.Matches(msg, keys.Open):
		if ev, ok := m.eventAtCursor(); ok {
			return m.dispatch(interaction.AppointmentDoubleClick{Event: ev})
		}
		return m.dispatch(interaction.SlotDoubleClick{Range: m.cursorRange()})
	case key.Matches(msg, keys.NextEvent):
		return m.selectNextEvent()
	case key.Matches(msg, keys.Schedule):
		return m.dispatch(interaction.MenuSchedule{Now: m.now()})
	case key.Matches(msg, keys.Edit):
		return m.dispatch(interaction.MenuEdit{})
	case key.Matches(msg, keys.Delete):
		return m.dispatch(interaction.KeyDelete{})
	case key.Matches(msg, keys.Menu):
		x, y, ok := g.Origin(m.cursor)
		if !ok {
			return nil
		}
		ev := interaction.ContextMenu{X: x, Y: y}
		if hit, ok := m.eventAtCursor(); ok {
			ev.Hit = &hit
		}
		m.menuIdx = 0
		return m.dispatch(ev)
	case key.Matches(msg, keys.Refresh):
		return tea.Batch(m.loadAppointments(), m.loadClients())
	}
	return nil
}

func (m *CalendarApp) changeView(v interaction.View) tea.Cmd {
	st := m.state()
	if st.HighlightedDay != nil {
		m.cursor = m.snapToSlot(interaction.StartOfDay(*st.HighlightedDay).Add(m.cursorClock()))
	}
	cmd := m.dispatch(interaction.ViewChange{View: v})
	m.scroll = m.geometry().ClampScroll(m.scroll)
	m.followCursor()
	m.revealCursor()
	return cmd
}

// cursorClock is the cursor's offset into its day
func (m *CalendarApp) cursorClock() time.Duration {
	return m.cursor.Sub(interaction.StartOfDay(m.cursor))
}

// moveCursor moves the keyboard cursor, paging the period when it leaves it
func (m *CalendarApp) moveCursor(t time.Time) tea.Cmd {
	m.cursor = m.snapToSlot(t)
	cmd := m.followCursor()
	m.revealCursor()
	return cmd
}

// moveCursorInDay moves the cursor by slot rows without leaving its day
func (m *CalendarApp) moveCursorInDay(t time.Time) tea.Cmd {
	if !interaction.SameDay(t, m.cursor) {
		return nil
	}
	m.cursor = m.snapToSlot(t)
	m.revealCursor()
	return nil
}

// followCursor pages the visible period until it contains the cursor
func (m *CalendarApp) followCursor() tea.Cmd {
	var cmds []tea.Cmd
	for i := 0; i < 64; i++ {
		start, end := m.geometry().Period()
		switch {
		case m.cursor.Before(start):
			cmds = append(cmds, m.dispatch(interaction.Navigate{Direction: interaction.Prev, Now: m.now()}))
		case !m.cursor.Before(end):
			cmds = append(cmds, m.dispatch(interaction.Navigate{Direction: interaction.Next, Now: m.now()}))
		default:
			return tea.Batch(cmds...)
		}
	}
	return tea.Batch(cmds...)
}

// revealCursor scrolls week and day grids so the cursor row is visible
func (m *CalendarApp) revealCursor() {
	g := m.geometry()
	if g.View == interaction.Month {
		return
	}
	rows := g.Height - calview.HeaderRows
	idx := g.SlotIndex(m.cursor)
	if idx < m.scroll {
		m.scroll = idx
	}
	if idx >= m.scroll+rows {
		m.scroll = idx - rows + 1
	}
	m.scroll = g.ClampScroll(m.scroll)
}

// snapToSlot floors t to a slot boundary inside the visible hours of its day
func (m *CalendarApp) snapToSlot(t time.Time) time.Time {
	slot := m.cfg.Slot()
	day := interaction.StartOfDay(t)
	offset := t.Sub(day)
	offset -= offset % slot

	first := time.Duration(m.cfg.DayStartHour) * time.Hour
	last := time.Duration(m.cfg.DayEndHour)*time.Hour - slot
	if m.cfg.DayEndHour <= m.cfg.DayStartHour {
		last = 24*time.Hour - slot
	}
	if offset < first {
		offset = first
	}
	if offset > last {
		offset = last
	}
	return day.Add(offset)
}

func shiftCursor(t time.Time, v interaction.View, n int) time.Time {
	switch v {
	case interaction.Month:
		return t.AddDate(0, n, 0)
	case interaction.Day:
		return t.AddDate(0, 0, n)
	default:
		return t.AddDate(0, 0, 7*n)
	}
}

func (m *CalendarApp) cursorRange() interaction.Range {
	if m.state().View == interaction.Month {
		day := interaction.StartOfDay(m.cursor)
		return interaction.Range{Start: day, End: day.AddDate(0, 0, 1)}
	}
	return interaction.Range{Start: m.cursor, End: m.cursor.Add(m.cfg.Slot())}
}

func (m *CalendarApp) eventAtCursor() (model.Event, bool) {
	st := m.state()
	if st.View == interaction.Month {
		events := calview.EventsOn(st.Events, m.cursor)
		if len(events) == 0 {
			return model.Event{}, false
		}
		return events[0], true
	}
	r := m.cursorRange()
	for _, ev := range st.Events {
		if ev.Start.Before(r.End) && ev.End.After(r.Start) {
			return ev, true
		}
	}
	return model.Event{}, false
}

// selectNextEvent selects the next appointment of the visible period after the selected one
func (m *CalendarApp) selectNextEvent() tea.Cmd {
	st := m.state()
	start, end := m.geometry().Period()

	var visible []model.Event
	for _, ev := range st.Events {
		if ev.Start.Before(end) && ev.End.After(start) {
			visible = append(visible, ev)
		}
	}
	if len(visible) == 0 {
		return nil
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Start.Before(visible[j].Start) })

	next := visible[0]
	if st.Selected != nil {
		for i, ev := range visible {
			if ev.ID == st.Selected.ID {
				next = visible[(i+1)%len(visible)]
				break
			}
		}
	}
	m.cursor = m.snapToSlot(next.Start)
	m.revealCursor()
	return m.dispatch(interaction.AppointmentClick{Event: next})
}

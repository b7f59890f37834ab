package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"apptcal/internal/calview"
	"apptcal/internal/i18n"
	"apptcal/internal/interaction"
	"apptcal/internal/model"
	"apptcal/internal/store"
)

// edgeMarker is drawn on the cell that grabs an appointment's end for resizing
const edgeMarker = "◢"

func (m *CalendarApp) View() string {
	if m.width == 0 {
		return i18n.T("calendar.loading")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.state().Mode == interaction.DialogOpen {
		b.WriteString(lipgloss.Place(m.width, m.surfaceHeight(), lipgloss.Center, lipgloss.Center, m.renderDialog()))
	} else {
		b.WriteString(m.renderSurface().String())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *CalendarApp) renderHeader() string {
	st := m.state()
	g := m.geometry()

	title := TitleStyle.Render(i18n.T("calendar.title"))
	period := PeriodStyle.Render(periodLabel(g))

	var tabs []string
	for _, v := range []interaction.View{interaction.Month, interaction.Week, interaction.Day} {
		label := i18n.T("view." + v.String())
		if v == st.View {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}

	parts := []string{title, period, strings.Join(tabs, " ")}
	if st.Pending > 0 {
		parts = append(parts, PendingStyle.Render(i18n.T("calendar.saving")))
	}
	return strings.Join(parts, " ")
}

func periodLabel(g calview.Geometry) string {
	start, end := g.Period()
	switch g.View {
	case interaction.Month:
		return g.Focus.Format("January 2006")
	case interaction.Day:
		return start.Format("Monday, Jan 2, 2006")
	default:
		last := end.AddDate(0, 0, -1)
		if start.Year() != last.Year() {
			return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), last.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), last.Format("Jan 2, 2006"))
	}
}

// renderSurface draws the calendar grid with its overlays
func (m *CalendarApp) renderSurface() *canvas {
	st := m.state()
	g := m.geometry()
	c := newCanvas(g.Width, g.Height)

	if g.View == interaction.Month {
		m.drawMonth(c, st, g)
	} else {
		m.drawTimeGrid(c, st, g)
	}
	if st.Menu != nil {
		m.drawMenu(c, st.Menu, g)
	}
	return c
}

func (m *CalendarApp) drawTimeGrid(c *canvas, st interaction.State, g calview.Geometry) {
	days := g.Days()
	col := g.ColumnWidth()
	today := m.now()

	for i, day := range days {
		x := calview.GutterWidth + i*col
		t := toneHeader
		if interaction.SameDay(day, today) {
			t = toneToday
		}
		c.text(x, 0, col-1, day.Format("Mon 1/2"), t)
	}

	rows := g.VisibleRows()
	for r := 0; r < rows; r++ {
		idx := g.Scroll + r
		y := calview.HeaderRows + r
		if len(days) > 0 {
			if slot := g.SlotTime(days[0], idx); slot.Minute() == 0 {
				c.text(0, y, calview.GutterWidth-1, slot.Format("15:04"), toneGutter)
			}
		}
		for i, day := range days {
			x := calview.GutterWidth + i*col
			switch calview.SlotState(st, g.SlotTime(day, idx)) {
			case calview.SlotSelected:
				c.fill(x, y, col, 1, toneSlotSelected)
			case calview.SlotDropTarget:
				c.fill(x, y, col, 1, toneDropTarget)
			case calview.SlotHighlight:
				c.fill(x, y, col, 1, toneDayHighlight)
			default:
				c.text(x, y, 1, "·", toneMuted)
			}
		}
	}

	for i, day := range days {
		for _, p := range calview.Lanes(st.Events, day) {
			m.drawBlock(c, st, g, p, day, calview.GutterWidth+i*col)
		}
	}

	if st.Mode == interaction.Idle || st.Mode == interaction.SlotSelecting {
		if x, y, ok := g.Origin(m.cursor); ok {
			c.tint(x, y, 2, toneCursor)
		}
	}
}

// drawBlock draws one appointment in its lane of a day column
func (m *CalendarApp) drawBlock(c *canvas, st interaction.State, g calview.Geometry, p calview.Placed, day time.Time, colX int) {
	col := g.ColumnWidth()
	laneW := col / p.Lanes
	if laneW < 1 {
		laneW = 1
	}
	x := colX + p.Lane*laneW
	first, last := g.RowSpan(p.Event, day)
	endsToday := interaction.SameDay(p.Event.End.Add(-time.Nanosecond), day)
	t := eventTone(calview.EventState(st, p.Event))

	rows := g.VisibleRows()
	for idx := first; idx <= last; idx++ {
		r := idx - g.Scroll
		if r < 0 || r >= rows {
			continue
		}
		y := calview.HeaderRows + r
		c.fill(x, y, laneW, 1, t)

		edge := idx == last && endsToday
		textW := laneW
		if edge {
			textW--
		}
		switch idx {
		case first:
			c.text(x, y, textW, p.Event.Title, t)
		case first + 1:
			c.text(x, y, textW, timeSpan(p.Event), t)
		}
		if edge {
			if first != last {
				c.tint(x, y, laneW-1, toneEventEdge)
			}
			c.text(x+laneW-1, y, 1, edgeMarker, toneEventEdge)
		}
	}
}

func timeSpan(ev model.Event) string {
	return ev.Start.Format("15:04") + "-" + ev.End.Format("15:04")
}

func eventTone(v calview.EventVisual) tone {
	switch {
	case v.Dragging:
		return toneEventDragging
	case v.Selected:
		return toneEventSelected
	default:
		return toneEvent
	}
}

func (m *CalendarApp) drawMonth(c *canvas, st interaction.State, g calview.Geometry) {
	days := g.Days()
	col := g.ColumnWidth()
	ch := g.CellHeight()
	today := m.now()

	for i := 0; i < 7 && i < len(days); i++ {
		c.text(i*col, 0, col-1, days[i].Format("Mon"), toneHeader)
	}

	for i, day := range days {
		x := (i % 7) * col
		y := calview.HeaderRows + (i/7)*ch

		switch calview.DayState(st, day) {
		case calview.SlotSelected:
			c.fill(x, y, col, ch, toneSlotSelected)
		case calview.SlotDropTarget:
			c.fill(x, y, col, ch, toneDropTarget)
		case calview.SlotHighlight:
			c.fill(x, y, col, ch, toneDayHighlight)
		}

		numTone := toneNormal
		switch {
		case interaction.SameDay(day, today):
			numTone = toneToday
		case day.Month() != g.Focus.Month():
			numTone = toneOtherMonth
		}
		events := calview.EventsOn(st.Events, day)
		label := fmt.Sprintf("%2d", day.Day())
		if hidden := len(events) - (ch - 1); hidden > 0 {
			label += fmt.Sprintf(" +%d", hidden)
		}
		c.text(x, y, col-1, label, numTone)

		for j, ev := range events {
			if j >= ch-1 {
				break
			}
			t := eventTone(calview.EventState(st, ev))
			c.fill(x, y+1+j, col, 1, t)
			c.text(x, y+1+j, col-1, ev.Start.Format("15:04")+" "+ev.Title, t)
			c.text(x+col-1, y+1+j, 1, edgeMarker, toneEventEdge)
		}
	}

	if st.Mode == interaction.Idle || st.Mode == interaction.SlotSelecting {
		if x, y, ok := g.Origin(m.cursor); ok {
			c.tint(x, y, 2, toneCursor)
		}
	}
}

func menuLabel(item interaction.MenuItem) string {
	return i18n.T("menu." + item.String())
}

// menuRect places the menu on the surface, shifted to stay inside it
func menuRect(menu *interaction.Menu, g calview.Geometry) (x, y, w, h int) {
	w = 0
	for _, item := range menu.Items {
		if lw := runewidth.StringWidth(menuLabel(item)); lw > w {
			w = lw
		}
	}
	w += 2
	h = len(menu.Items)

	x, y = menu.X, menu.Y
	if x+w > g.Width {
		x = g.Width - w
	}
	if y+h > g.Height {
		y = g.Height - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

func (m *CalendarApp) drawMenu(c *canvas, menu *interaction.Menu, g calview.Geometry) {
	x, y, w, _ := menuRect(menu, g)
	for i, item := range menu.Items {
		t := toneMenu
		if i == m.menuIdx {
			t = toneMenuActive
		}
		c.fill(x, y+i, w, 1, t)
		c.text(x+1, y+i, w-2, menuLabel(item), t)
	}
}

// menuItemAt resolves a surface position to a context menu entry
func (m *CalendarApp) menuItemAt(px, py int) (interaction.MenuItem, bool) {
	menu := m.state().Menu
	if menu == nil {
		return 0, false
	}
	x, y, w, h := menuRect(menu, m.geometry())
	if px < x || px >= x+w || py < y || py >= y+h {
		return 0, false
	}
	return menu.Items[py-y], true
}

func (m *CalendarApp) renderFooter() string {
	st := m.state()

	banner := ""
	if st.Banner != nil {
		banner = BannerStyle.Render(bannerText(st.Banner))
	}

	var rows [2][]key.Binding
	switch st.Mode {
	case interaction.DialogOpen:
	case interaction.ContextMenuOpen:
		rows[0] = []key.Binding{keys.Up, keys.Down, keys.Open, keys.Cancel}
	case interaction.Dragging, interaction.Resizing, interaction.SlotSelecting:
		rows[0] = []key.Binding{keys.Cancel}
	default:
		rows[0] = []key.Binding{keys.Month, keys.Week, keys.Day, keys.Prev, keys.Next, keys.Today, keys.Refresh, keys.Quit}
		rows[1] = []key.Binding{keys.Select, keys.Open, keys.NextEvent, keys.Schedule, keys.Edit, keys.Delete, keys.Menu}
	}

	return strings.Join([]string{banner, renderBindings(rows[0]), renderBindings(rows[1])}, "\n")
}

func renderBindings(bindings []key.Binding) string {
	pairs := make([][2]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		pairs = append(pairs, [2]string{h.Key, i18n.T(h.Desc)})
	}
	if len(pairs) == 0 {
		return ""
	}
	return renderHelp(pairs)
}

// bannerText is the message shown for a banner error
func bannerText(err error) string {
	var we *interaction.WriteError
	switch {
	case errors.As(err, &we):
		return i18n.T("banner.write_failed", map[string]interface{}{
			"Op":     i18n.T("op." + we.Op.String()),
			"Reason": store.Message(we.Err),
		})
	case errors.Is(err, interaction.ErrNoSelectionEdit):
		return i18n.T("banner.no_selection_edit")
	case errors.Is(err, interaction.ErrNoSelectionDelete):
		return i18n.T("banner.no_selection_delete")
	}
	return i18n.T("banner.load_failed", map[string]interface{}{
		"Reason": store.Message(err),
	})
}

package calview

import (
	"time"

	"apptcal/internal/interaction"
	"apptcal/internal/model"
)

const (
	// GutterWidth is the time column on the left of week and day grids
	GutterWidth = 6
	// HeaderRows is the day name row above every grid
	HeaderRows = 1
	// MonthWeeks is the fixed number of week rows in the month grid
	MonthWeeks = 6
)

// Geometry lays out the visible period on a character grid. The same value
// renders the grid and resolves pointer positions, so what is hit is what
// was drawn.
type Geometry struct {
	View      interaction.View
	Focus     time.Time
	WeekStart time.Weekday
	Slot      time.Duration
	DayStart  int
	DayEnd    int
	Width     int
	Height    int
	// Scroll is the first visible slot row of week and day grids
	Scroll int
}

// Hit is an event under the pointer. Edge is set on the event's bottom edge.
type Hit struct {
	Event model.Event
	Edge  bool
}

func (g Geometry) slot() time.Duration {
	if g.Slot <= 0 {
		return 30 * time.Minute
	}
	return g.Slot
}

// Days returns the day columns (week, day) or cells (month) of the period
func (g Geometry) Days() []time.Time {
	start, end := g.Period()
	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Period returns the visible [start, end)
func (g Geometry) Period() (time.Time, time.Time) {
	switch g.View {
	case interaction.Month:
		start := interaction.StartOfWeek(interaction.StartOfMonth(g.Focus), g.WeekStart)
		return start, start.AddDate(0, 0, 7*MonthWeeks)
	case interaction.Day:
		start := interaction.StartOfDay(g.Focus)
		return start, start.AddDate(0, 0, 1)
	default:
		start := interaction.StartOfWeek(g.Focus, g.WeekStart)
		return start, start.AddDate(0, 0, 7)
	}
}

// SlotsPerDay is the number of slot rows between DayStart and DayEnd
func (g Geometry) SlotsPerDay() int {
	hours := g.DayEnd - g.DayStart
	if hours <= 0 {
		hours = 24
	}
	return int(time.Duration(hours) * time.Hour / g.slot())
}

// VisibleRows is how many slot rows fit under the header
func (g Geometry) VisibleRows() int {
	rows := g.Height - HeaderRows
	if rows < 1 {
		rows = 1
	}
	if n := g.SlotsPerDay() - g.Scroll; rows > n {
		rows = n
	}
	return rows
}

// ClampScroll keeps Scroll inside the day
func (g Geometry) ClampScroll(scroll int) int {
	maxScroll := g.SlotsPerDay() - (g.Height - HeaderRows)
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}
	return scroll
}

// ColumnWidth is the width of one day column or month cell
func (g Geometry) ColumnWidth() int {
	cols := len(g.Days())
	avail := g.Width - GutterWidth
	if g.View == interaction.Month {
		cols = 7
		avail = g.Width
	}
	if cols == 0 {
		return 1
	}
	w := avail / cols
	if w < 1 {
		w = 1
	}
	return w
}

// CellHeight is the height of one month cell, including its day number row
func (g Geometry) CellHeight() int {
	h := (g.Height - HeaderRows) / MonthWeeks
	if h < 2 {
		h = 2
	}
	return h
}

// SlotTime returns the start of slot row idx on day
func (g Geometry) SlotTime(day time.Time, idx int) time.Time {
	base := interaction.StartOfDay(day).Add(time.Duration(g.DayStart) * time.Hour)
	return base.Add(time.Duration(idx) * g.slot())
}

// SlotIndex returns the slot row containing t on its own day
func (g Geometry) SlotIndex(t time.Time) int {
	base := interaction.StartOfDay(t).Add(time.Duration(g.DayStart) * time.Hour)
	return int(t.Sub(base) / g.slot())
}

// dayAt resolves a column or cell to its day
func (g Geometry) dayAt(x, y int) (time.Time, bool) {
	days := g.Days()
	if len(days) == 0 || x < 0 || y < HeaderRows {
		return time.Time{}, false
	}

	col := g.ColumnWidth()
	if g.View == interaction.Month {
		c := x / col
		r := (y - HeaderRows) / g.CellHeight()
		if c >= 7 || r >= MonthWeeks {
			return time.Time{}, false
		}
		return days[r*7+c], true
	}

	if x < GutterWidth {
		return time.Time{}, false
	}
	c := (x - GutterWidth) / col
	if c >= len(days) {
		return time.Time{}, false
	}
	return days[c], true
}

// SlotAt resolves a pointer position to the slot under it. Month cells
// resolve to the whole day.
func (g Geometry) SlotAt(x, y int) (interaction.Range, bool) {
	day, ok := g.dayAt(x, y)
	if !ok {
		return interaction.Range{}, false
	}
	if g.View == interaction.Month {
		return interaction.Range{Start: day, End: day.AddDate(0, 0, 1)}, true
	}

	idx := g.Scroll + y - HeaderRows
	if idx >= g.SlotsPerDay() {
		return interaction.Range{}, false
	}
	start := g.SlotTime(day, idx)
	return interaction.Range{Start: start, End: start.Add(g.slot())}, true
}

// EventAt returns the event drawn at a pointer position
func (g Geometry) EventAt(x, y int, events []model.Event) (Hit, bool) {
	day, ok := g.dayAt(x, y)
	if !ok {
		return Hit{}, false
	}
	if g.View == interaction.Month {
		return g.monthEventAt(day, x, y, events)
	}

	idx := g.Scroll + y - HeaderRows
	col := g.ColumnWidth()
	offset := (x - GutterWidth) % col
	for _, p := range Lanes(events, day) {
		first, last := g.rowSpan(p.Event, day)
		if idx < first || idx > last {
			continue
		}
		laneWidth := col / p.Lanes
		if laneWidth < 1 {
			laneWidth = 1
		}
		lane := offset / laneWidth
		if lane >= p.Lanes {
			lane = p.Lanes - 1
		}
		if lane != p.Lane {
			continue
		}
		edge := idx == last && interaction.SameDay(p.Event.End.Add(-time.Nanosecond), day)
		if edge && first == last {
			// one-row blocks resize from their last column only
			edge = offset == (lane+1)*laneWidth-1
		}
		return Hit{Event: p.Event, Edge: edge}, true
	}
	return Hit{}, false
}

func (g Geometry) monthEventAt(day time.Time, x, y int, events []model.Event) (Hit, bool) {
	line := (y-HeaderRows)%g.CellHeight() - 1
	if line < 0 {
		return Hit{}, false
	}
	dayEvents := EventsOn(events, day)
	if line >= len(dayEvents) {
		return Hit{}, false
	}
	col := g.ColumnWidth()
	return Hit{Event: dayEvents[line], Edge: x%col == col-1}, true
}

// RowSpan returns the first and last slot rows ev occupies on day
func (g Geometry) RowSpan(ev model.Event, day time.Time) (int, int) {
	return g.rowSpan(ev, day)
}

func (g Geometry) rowSpan(ev model.Event, day time.Time) (int, int) {
	dayStart := interaction.StartOfDay(day)
	first := 0
	if !ev.Start.Before(dayStart) {
		first = g.SlotIndex(ev.Start)
	}

	last := g.SlotsPerDay() - 1
	end := ev.End
	if !end.After(ev.Start) {
		end = ev.Start.Add(g.slot())
	}
	if end.Before(dayStart.AddDate(0, 0, 1)) {
		last = g.SlotIndex(end.Add(-time.Nanosecond))
	}
	if first < 0 {
		first = 0
	}
	if last < first {
		last = first
	}
	return first, last
}

// GrabOffset is how far into ev the pointer grabbed it, in whole slots or days
func (g Geometry) GrabOffset(ev model.Event, grabbed interaction.Range) time.Duration {
	if g.View == interaction.Month {
		days := dayDiff(ev.Start, grabbed.Start)
		return time.Duration(days) * 24 * time.Hour
	}
	offset := grabbed.Start.Sub(ev.Start)
	return offset - offset%g.slot()
}

// DropTarget computes where ev lands if released at x, y after being grabbed
// grab into its span. Month targets are whole days.
func (g Geometry) DropTarget(ev model.Event, grab time.Duration, x, y int) (interaction.Range, bool) {
	r, ok := g.SlotAt(x, y)
	if !ok {
		return interaction.Range{}, false
	}
	if g.View == interaction.Month {
		start := r.Start.AddDate(0, 0, -int(grab/(24*time.Hour)))
		span := dayDiff(ev.Start, ev.End)
		return interaction.Range{Start: start, End: start.AddDate(0, 0, span)}, true
	}
	start := r.Start.Add(-grab)
	return interaction.Range{Start: start, End: start.Add(ev.Duration())}, true
}

// ResizeTarget computes ev's bounds if its bottom edge is released at x, y.
// The end never moves above the first slot of the event.
func (g Geometry) ResizeTarget(ev model.Event, x, y int) (interaction.Range, bool) {
	r, ok := g.SlotAt(x, y)
	if !ok {
		return interaction.Range{}, false
	}
	if g.View == interaction.Month {
		first := interaction.StartOfDay(ev.Start)
		last := r.Start
		if last.Before(first) {
			last = first
		}
		return interaction.Range{Start: first, End: last}, true
	}
	end := r.End
	if floor := ev.Start.Add(g.slot()); end.Before(floor) {
		end = floor
	}
	return interaction.Range{Start: ev.Start, End: end}, true
}

// Origin returns the top-left cell where t is drawn
func (g Geometry) Origin(t time.Time) (int, int, bool) {
	days := g.Days()
	for i, day := range days {
		if !interaction.SameDay(day, t) {
			continue
		}
		col := g.ColumnWidth()
		if g.View == interaction.Month {
			return (i % 7) * col, HeaderRows + (i/7)*g.CellHeight(), true
		}
		row := g.SlotIndex(t) - g.Scroll
		if row < 0 || row >= g.VisibleRows() {
			return 0, 0, false
		}
		return GutterWidth + i*col, HeaderRows + row, true
	}
	return 0, 0, false
}

func dayDiff(a, b time.Time) int {
	da := interaction.StartOfDay(a)
	db := interaction.StartOfDay(b)
	return int(db.Sub(da).Round(24*time.Hour) / (24 * time.Hour))
}

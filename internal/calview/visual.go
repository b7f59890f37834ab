package calview

import (
	"time"

	"apptcal/internal/interaction"
	"apptcal/internal/model"
)

// SlotVisual is how a slot or day cell is drawn
type SlotVisual int

const (
	SlotNone SlotVisual = iota
	SlotSelected
	SlotDropTarget
	SlotHighlight
)

// SlotState derives the visual of the slot starting at slot.
// Precedence: day highlight, then drop target, then selection.
func SlotState(st interaction.State, slot time.Time) SlotVisual {
	if st.HighlightedDay != nil && interaction.SameDay(*st.HighlightedDay, slot) {
		return SlotHighlight
	}
	if st.Drag != nil && st.Drag.Target != nil && inTarget(*st.Drag.Target, slot, st.Drag.AllDay) {
		return SlotDropTarget
	}
	if st.Selecting != nil && inRange(*st.Selecting, slot) {
		return SlotSelected
	}
	for _, s := range st.Slots {
		if s.Equal(slot) {
			return SlotSelected
		}
	}
	return SlotNone
}

// DayState derives the visual of a month cell
func DayState(st interaction.State, day time.Time) SlotVisual {
	day = interaction.StartOfDay(day)
	if st.HighlightedDay != nil && interaction.SameDay(*st.HighlightedDay, day) {
		return SlotHighlight
	}
	if st.Drag != nil && st.Drag.Target != nil && inTarget(*st.Drag.Target, day, true) {
		return SlotDropTarget
	}
	if st.Selecting != nil && inTarget(*st.Selecting, day, true) {
		return SlotSelected
	}
	return SlotNone
}

func inRange(r interaction.Range, t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// inTarget reports whether t lies in the drop target. Day-cell targets cover
// whole days, from the start date through the end date.
func inTarget(r interaction.Range, t time.Time, allDay bool) bool {
	if !allDay {
		return inRange(r, t)
	}
	first := interaction.StartOfDay(r.Start)
	last := interaction.StartOfDay(r.End)
	day := interaction.StartOfDay(t)
	return !day.Before(first) && !day.After(last)
}

// EventVisual is how an event block is drawn
type EventVisual struct {
	Selected  bool
	Dragging  bool
	Movable   bool
	Resizable bool
}

// EventState derives the visual of ev. Every event can be moved and resized.
func EventState(st interaction.State, ev model.Event) EventVisual {
	return EventVisual{
		Selected:  st.Selected != nil && st.Selected.ID == ev.ID,
		Dragging:  st.Drag != nil && st.Drag.Event.ID == ev.ID,
		Movable:   true,
		Resizable: true,
	}
}

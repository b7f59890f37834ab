package calview

import (
	"sort"
	"time"

	"apptcal/internal/interaction"
	"apptcal/internal/model"
)

// ToEvents maps store appointments to display events, sorted by start.
// Open-ended appointments are drawn one slot long.
func ToEvents(appointments []model.Appointment, slot time.Duration) []model.Event {
	events := make([]model.Event, 0, len(appointments))
	for _, a := range appointments {
		events = append(events, model.NewEvent(a, slot))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// Placed is an event positioned in a day column
type Placed struct {
	Event model.Event
	Lane  int
	Lanes int
}

// overlapsDay reports whether ev is visible on day
func overlapsDay(ev model.Event, day time.Time) bool {
	dayStart := interaction.StartOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)
	if !ev.End.After(ev.Start) {
		return !ev.Start.Before(dayStart) && ev.Start.Before(dayEnd)
	}
	return ev.Start.Before(dayEnd) && ev.End.After(dayStart)
}

// EventsOn returns the events visible on day, in start order
func EventsOn(events []model.Event, day time.Time) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if overlapsDay(ev, day) {
			out = append(out, ev)
		}
	}
	return out
}

// Lanes places the events of one day side by side so overlapping events
// never share a lane.
func Lanes(events []model.Event, day time.Time) []Placed {
	dayEvents := EventsOn(events, day)
	placed := make([]Placed, len(dayEvents))

	var laneEnds []time.Time
	for i, ev := range dayEvents {
		lane := -1
		for l, end := range laneEnds {
			if !end.After(ev.Start) {
				lane = l
				break
			}
		}
		end := ev.End
		if !end.After(ev.Start) {
			end = ev.Start.Add(time.Nanosecond)
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, end)
		} else {
			laneEnds[lane] = end
		}
		placed[i] = Placed{Event: ev, Lane: lane}
	}

	for i := range placed {
		placed[i].Lanes = len(laneEnds)
	}
	return placed
}

package interaction

import (
	"fmt"
	"strings"
	"time"

	"apptcal/internal/dialog"
	"apptcal/internal/model"
)

// Mode is the interaction mode of the calendar surface
type Mode int

const (
	Idle Mode = iota
	SlotSelecting
	Dragging
	Resizing
	ContextMenuOpen
	DialogOpen
)

func (m Mode) String() string {
	switch m {
	case SlotSelecting:
		return "slot-selecting"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case ContextMenuOpen:
		return "context-menu"
	case DialogOpen:
		return "dialog"
	default:
		return "idle"
	}
}

// View is the calendar granularity
type View int

const (
	Month View = iota
	Week
	Day
)

func (v View) String() string {
	switch v {
	case Month:
		return "month"
	case Day:
		return "day"
	default:
		return "week"
	}
}

// ParseView parses "month", "week" or "day"
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month":
		return Month, nil
	case "week", "":
		return Week, nil
	case "day":
		return Day, nil
	}
	return Week, fmt.Errorf("unknown view %q", s)
}

// Range is a half-open time interval [Start, End)
type Range struct {
	Start time.Time
	End   time.Time
}

// Slots enumerates the sub-slot starts of r at the given step, end exclusive
func (r Range) Slots(step time.Duration) []time.Time {
	if step <= 0 {
		return nil
	}
	var slots []time.Time
	for t := r.Start; t.Before(r.End); t = t.Add(step) {
		slots = append(slots, t)
	}
	return slots
}

// Minutes is the length of r in whole minutes
func (r Range) Minutes() int {
	return int(r.End.Sub(r.Start) / time.Minute)
}

// MenuItem is one entry of the context menu
type MenuItem int

const (
	ItemSchedule MenuItem = iota
	ItemEdit
	ItemDelete
)

func (i MenuItem) String() string {
	switch i {
	case ItemEdit:
		return "edit"
	case ItemDelete:
		return "delete"
	default:
		return "schedule"
	}
}

// Menu is an open context menu, positioned relative to the calendar surface
type Menu struct {
	X     int
	Y     int
	Items []MenuItem
}

// DragState tracks an in-progress move or resize
type DragState struct {
	Event  model.Event
	Target *Range
	// AllDay is set when the drag happens on day cells (month view)
	AllDay bool
	// Saving is set once the drop has been issued to the store
	Saving bool
}

// Config holds the tunables the state machine reads
type Config struct {
	Slot            time.Duration
	DefaultSchedule time.Duration
	WeekStart       time.Weekday
	MenuOffset      int
	Policy          dialog.Policy
}

// DefaultConfig returns 30 minute slots, Sunday week start and the default menu offset
func DefaultConfig() Config {
	return Config{
		Slot:            30 * time.Minute,
		DefaultSchedule: 30 * time.Minute,
		WeekStart:       time.Sunday,
		MenuOffset:      1,
	}
}

// State is everything the calendar surface knows about the current interaction.
// Step never mutates a State in place; slices and pointers are replaced, not edited.
type State struct {
	Config Config

	Mode   Mode
	Dialog dialog.Coordinator

	// Events is the last list loaded from the store
	Events []model.Event

	Selected       *model.Event
	SlotRange      *Range
	Slots          []time.Time
	Selecting      *Range
	HighlightedDay *time.Time

	View  View
	Focus time.Time

	Drag *DragState
	Menu *Menu

	Banner  error
	Pending int
}

// NewState returns an idle state focused on now
func NewState(cfg Config, view View, now time.Time) State {
	if cfg.Slot <= 0 {
		cfg.Slot = 30 * time.Minute
	}
	if cfg.DefaultSchedule <= 0 {
		cfg.DefaultSchedule = 30 * time.Minute
	}
	return State{
		Config: cfg,
		Mode:   Idle,
		View:   view,
		Focus:  StartOfDay(now),
	}
}

// Find returns the loaded event with the given id
func (s State) Find(id int64) (model.Event, bool) {
	for _, ev := range s.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

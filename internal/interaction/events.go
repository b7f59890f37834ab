package interaction

import (
	"errors"
	"fmt"
	"time"

	"apptcal/internal/model"
)

var (
	ErrNoSelectionEdit   = errors.New("no appointment selected for editing")
	ErrNoSelectionDelete = errors.New("no appointment selected for deletion")
)

// Event is an input to Step
type Event interface {
	isEvent()
}

// SlotSelectStart begins a press-drag selection over empty slots
type SlotSelectStart struct{ Range Range }

// SlotSelectExtend grows the in-progress selection to Range
type SlotSelectExtend struct{ Range Range }

// SlotClick is a single click (or the release of a press-drag) on empty slots
type SlotClick struct{ Range Range }

// SlotDoubleClick is a double click on an empty slot
type SlotDoubleClick struct{ Range Range }

// AppointmentClick is a single click on an appointment
type AppointmentClick struct{ Event model.Event }

// AppointmentDoubleClick is a double click on an appointment
type AppointmentDoubleClick struct{ Event model.Event }

// ContextMenu is a right click at X, Y on the calendar surface.
// Hit is the appointment under the pointer, if any.
type ContextMenu struct {
	X   int
	Y   int
	Hit *model.Event
}

// MenuSchedule is the Schedule action; Now seeds the fallback slot
type MenuSchedule struct{ Now time.Time }

// MenuEdit is the Edit action
type MenuEdit struct{}

// MenuDelete is the Delete action
type MenuDelete struct{}

// MenuDismiss closes the context menu
type MenuDismiss struct{}

// KeyDelete is the Delete key
type KeyDelete struct{}

// DragStart grabs an appointment for a move
type DragStart struct {
	Event  model.Event
	AllDay bool
}

// DragOver reports the current drop target of a move or resize
type DragOver struct{ Target Range }

// Drop releases a dragged appointment on Target
type Drop struct{ Target Range }

// DragCancel abandons a drag, resize or slot selection
type DragCancel struct{}

// ResizeStart grabs the bottom edge of an appointment
type ResizeStart struct {
	Event  model.Event
	AllDay bool
}

// ResizeEnd releases a resized appointment with bounds Target
type ResizeEnd struct{ Target Range }

// ViewChange switches granularity
type ViewChange struct{ View View }

// Direction is a Navigate target
type Direction int

const (
	Prev Direction = iota
	Next
	Today
)

// Navigate moves the visible period
type Navigate struct {
	Direction Direction
	Now       time.Time
}

// DialogCancel closes the open dialog and drops its form
type DialogCancel struct{}

// CreateSubmit submits the schedule dialog
type CreateSubmit struct {
	ClientID    int64
	Description string
}

// EditSubmit submits the edit dialog with its fields as typed
type EditSubmit struct {
	ClientID    int64
	Start       string
	End         string
	Description string
}

// DeleteConfirm confirms the delete dialog
type DeleteConfirm struct{}

// Loaded carries a fresh appointment list from the store
type Loaded struct{ Events []model.Event }

// WriteSucceeded reports that a write and its re-fetch completed
type WriteSucceeded struct{ Op Op }

// WriteFailed reports that a write failed
type WriteFailed struct {
	Op  Op
	Err error
}

// LoadFailed reports a failed list fetch
type LoadFailed struct{ Err error }

// DismissBanner clears the error banner
type DismissBanner struct{}

func (SlotSelectStart) isEvent()        {}
func (SlotSelectExtend) isEvent()       {}
func (SlotClick) isEvent()              {}
func (SlotDoubleClick) isEvent()        {}
func (AppointmentClick) isEvent()       {}
func (AppointmentDoubleClick) isEvent() {}
func (ContextMenu) isEvent()            {}
func (MenuSchedule) isEvent()           {}
func (MenuEdit) isEvent()               {}
func (MenuDelete) isEvent()             {}
func (MenuDismiss) isEvent()            {}
func (KeyDelete) isEvent()              {}
func (DragStart) isEvent()              {}
func (DragOver) isEvent()               {}
func (Drop) isEvent()                   {}
func (DragCancel) isEvent()             {}
func (ResizeStart) isEvent()            {}
func (ResizeEnd) isEvent()              {}
func (ViewChange) isEvent()             {}
func (Navigate) isEvent()               {}
func (DialogCancel) isEvent()           {}
func (CreateSubmit) isEvent()           {}
func (EditSubmit) isEvent()             {}
func (DeleteConfirm) isEvent()          {}
func (Loaded) isEvent()                 {}
func (WriteSucceeded) isEvent()         {}
func (WriteFailed) isEvent()            {}
func (LoadFailed) isEvent()             {}
func (DismissBanner) isEvent()          {}

// Op names a store write
type Op int

const (
	OpCreate Op = iota
	OpMove
	OpResize
	OpEdit
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpResize:
		return "resize"
	case OpEdit:
		return "edit"
	case OpDelete:
		return "delete"
	default:
		return "create"
	}
}

// WriteError is the banner error of a failed write
type WriteError struct {
	Op  Op
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s appointment: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Effect is a store write requested by Step
type Effect interface {
	isEffect()
}

// CreateAppointment asks the runtime to create an appointment and re-fetch
type CreateAppointment struct {
	Input model.AppointmentInput
}

// UpdateAppointment asks the runtime to update appointment ID and re-fetch
type UpdateAppointment struct {
	Op    Op
	ID    int64
	Input model.AppointmentInput
}

// DeleteAppointment asks the runtime to delete appointment ID and re-fetch
type DeleteAppointment struct {
	ID int64
}

func (CreateAppointment) isEffect() {}
func (UpdateAppointment) isEffect() {}
func (DeleteAppointment) isEffect() {}

// EffectOp returns the Op an effect reports back with
func EffectOp(e Effect) Op {
	switch e := e.(type) {
	case UpdateAppointment:
		return e.Op
	case DeleteAppointment:
		return OpDelete
	default:
		return OpCreate
	}
}

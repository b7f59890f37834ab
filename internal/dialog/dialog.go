package dialog

import (
	"errors"
	"strings"
	"time"

	"apptcal/internal/model"
)

// Kind identifies which modal dialog is open
type Kind int

const (
	None Kind = iota
	ScheduleCreate
	Edit
	DeleteConfirm
)

func (k Kind) String() string {
	switch k {
	case ScheduleCreate:
		return "schedule"
	case Edit:
		return "edit"
	case DeleteConfirm:
		return "delete"
	default:
		return "none"
	}
}

// InputLayout is how start/end are typed in the edit form
const InputLayout = "2006-01-02 15:04"

var (
	ErrClientRequired     = errors.New("please select a client")
	ErrEditFieldsRequired = errors.New("client and appointment time are required")
	ErrInvalidStart       = errors.New("invalid start time")
	ErrInvalidEnd         = errors.New("invalid end time")
	ErrEndBeforeStart     = errors.New("end time must not be before start time")
)

// Policy holds the optional cross-field checks
type Policy struct {
	RequireEndAfterStart bool
}

// CreateForm seeds the schedule dialog from a slot range
type CreateForm struct {
	Start       time.Time
	End         time.Time
	ClientID    int64
	Description string
}

// Duration is the length shown in the dialog
func (f CreateForm) Duration() time.Duration {
	if f.End.IsZero() {
		return 0
	}
	return f.End.Sub(f.Start)
}

// Input validates the form and builds the create body
func (f CreateForm) Input() (model.AppointmentInput, error) {
	if f.ClientID == 0 {
		return model.AppointmentInput{}, ErrClientRequired
	}

	in := model.AppointmentInput{
		ClientID:        model.Ptr(f.ClientID),
		AppointmentTime: f.Start,
	}
	if !f.End.IsZero() {
		in.EndTime = model.Ptr(f.End)
	}
	if f.Description != "" {
		in.Description = model.Ptr(f.Description)
	}
	return in, nil
}

// EditForm holds the edit dialog's fields as typed
type EditForm struct {
	AppointmentID int64
	ClientID      int64
	Start         string
	End           string
	Description   string
}

// NewEditForm seeds the edit dialog from a display event
func NewEditForm(ev model.Event) EditForm {
	f := EditForm{
		AppointmentID: ev.ID,
		ClientID:      ev.ClientID,
		Start:         ev.Start.Format(InputLayout),
		Description:   ev.Description,
	}
	if ev.HasEnd {
		f.End = ev.End.Format(InputLayout)
	}
	return f
}

// Input validates the form and builds the update body.
// Description is always sent so clearing it sticks.
func (f EditForm) Input(policy Policy) (model.AppointmentInput, error) {
	startStr := strings.TrimSpace(f.Start)
	if f.ClientID == 0 || startStr == "" {
		return model.AppointmentInput{}, ErrEditFieldsRequired
	}

	start, err := time.ParseInLocation(InputLayout, startStr, time.Local)
	if err != nil {
		return model.AppointmentInput{}, ErrInvalidStart
	}

	in := model.AppointmentInput{
		ClientID:        model.Ptr(f.ClientID),
		AppointmentTime: start,
		Description:     model.Ptr(f.Description),
	}

	if endStr := strings.TrimSpace(f.End); endStr != "" {
		end, err := time.ParseInLocation(InputLayout, endStr, time.Local)
		if err != nil {
			return model.AppointmentInput{}, ErrInvalidEnd
		}
		if policy.RequireEndAfterStart && end.Before(start) {
			return model.AppointmentInput{}, ErrEndBeforeStart
		}
		in.EndTime = model.Ptr(end)
	}
	return in, nil
}

// Coordinator is the modal dialog slot. Only one dialog can be open at a time;
// opening a dialog replaces whatever form was there.
type Coordinator struct {
	kind   Kind
	Create CreateForm
	Edit   EditForm
	Target *model.Event
	// Err is the inline validation error of the open dialog
	Err error
	// Saving is set while the dialog's write is outstanding
	Saving bool
}

// Kind returns the open dialog, or None
func (c Coordinator) Kind() Kind {
	return c.kind
}

// Open reports whether any dialog is showing
func (c Coordinator) Open() bool {
	return c.kind != None
}

// OpenCreate shows the schedule dialog for [start, end)
func (c Coordinator) OpenCreate(start, end time.Time) Coordinator {
	return Coordinator{kind: ScheduleCreate, Create: CreateForm{Start: start, End: end}}
}

// OpenEdit shows the edit dialog for ev
func (c Coordinator) OpenEdit(ev model.Event) Coordinator {
	return Coordinator{kind: Edit, Edit: NewEditForm(ev), Target: &ev}
}

// OpenDelete shows the delete confirmation for ev
func (c Coordinator) OpenDelete(ev model.Event) Coordinator {
	return Coordinator{kind: DeleteConfirm, Target: &ev}
}

// Close discards the open dialog and its form
func (c Coordinator) Close() Coordinator {
	return Coordinator{}
}

// WithError records an inline validation error
func (c Coordinator) WithError(err error) Coordinator {
	c.Err = err
	return c
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// Client is a roster entry appointments are scheduled against
type Client struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ClientInput is the body of a client create call
type ClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Appointment is a time-bounded booking for one client.
// EndTime is optional; when set it should not precede AppointmentTime.
type Appointment struct {
	ID              int64
	ClientID        int64
	ClientName      string
	AppointmentTime time.Time
	EndTime         *time.Time
	Description     string
}

// AppointmentInput is the write body for create and update calls.
// Nil fields are left out of the request.
type AppointmentInput struct {
	ClientID        *int64
	AppointmentTime time.Time
	EndTime         *time.Time
	Description     *string
}

// EffectiveEnd returns the end time, falling back to start+fallback when the
// appointment is open-ended.
func (a Appointment) EffectiveEnd(fallback time.Duration) time.Time {
	if a.EndTime != nil {
		return *a.EndTime
	}
	return a.AppointmentTime.Add(fallback)
}

// Event is the display-layer join of an appointment used by the calendar.
// It is a weak reference: the store stays the only source of truth.
type Event struct {
	ID          int64
	Title       string
	Start       time.Time
	End         time.Time
	HasEnd      bool
	ClientID    int64
	Description string
}

// Duration returns the displayed length of the event
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Title builds the calendar label for an appointment
func Title(clientName, description string) string {
	if description == "" {
		description = "No description"
	}
	return fmt.Sprintf("%s - %s", clientName, description)
}

// NewEvent maps an appointment to its display event
func NewEvent(a Appointment, fallback time.Duration) Event {
	return Event{
		ID:          a.ID,
		Title:       Title(a.ClientName, a.Description),
		Start:       a.AppointmentTime,
		End:         a.EffectiveEnd(fallback),
		HasEnd:      a.EndTime != nil,
		ClientID:    a.ClientID,
		Description: a.Description,
	}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// MatchClient finds a client by name: an exact case-insensitive match wins,
// otherwise the name must be the prefix of exactly one client.
func MatchClient(name string, clients []Client) (Client, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Client{}, false
	}
	for _, c := range clients {
		if strings.ToLower(c.Name) == name {
			return c, true
		}
	}

	var found []Client
	for _, c := range clients {
		if strings.HasPrefix(strings.ToLower(c.Name), name) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Client{}, false
}

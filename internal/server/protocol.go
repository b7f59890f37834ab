package server

import (
	"time"

	"apptcal/internal/model"
)

// Request bodies

// clientRequest is the body of POST /clients
type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// scheduleRequest is the body of POST and PUT /schedules.
// Pointer fields tell an absent key from an empty one.
type scheduleRequest struct {
	ClientID        *int64           `json:"client_id"`
	AppointmentTime *model.Timestamp `json:"appointment_time"`
	EndTime         *model.Timestamp `json:"end_time"`
	Description     *string          `json:"description"`
}

// Response bodies

type clientResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type scheduleResponse struct {
	ID              int64            `json:"id"`
	ClientID        int64            `json:"client_id"`
	ClientName      string           `json:"client_name,omitempty"`
	AppointmentTime model.Timestamp  `json:"appointment_time"`
	EndTime         *model.Timestamp `json:"end_time"`
	Description     *string          `json:"description"`
}

// envelope wraps the row returned by PUT and DELETE
type envelope struct {
	Message     string           `json:"message"`
	Appointment scheduleResponse `json:"appointment"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newClientResponse(c Client) clientResponse {
	return clientResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func newScheduleResponse(s Schedule, clientName string) scheduleResponse {
	resp := scheduleResponse{
		ID:              s.ID,
		ClientID:        s.ClientID,
		ClientName:      clientName,
		AppointmentTime: model.Timestamp{Time: wallClock(s.AppointmentTime)},
		Description:     s.Description,
	}
	if s.EndTime != nil {
		resp.EndTime = &model.Timestamp{Time: wallClock(*s.EndTime)}
	}
	return resp
}

// wallClock reads a zone-less column value as local time.
// Drivers hand back timestamp columns in UTC with the stored wall clock.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

package store

import (
	"encoding/json"
	"time"

	"apptcal/internal/model"
)

// appointmentWire is the JSON shape of a schedules row
type appointmentWire struct {
	ID              int64            `json:"id"`
	ClientID        int64            `json:"client_id"`
	ClientName      string           `json:"client_name,omitempty"`
	AppointmentTime model.Timestamp  `json:"appointment_time"`
	EndTime         *model.Timestamp `json:"end_time"`
	Description     *string          `json:"description"`
}

func (w appointmentWire) toModel() model.Appointment {
	a := model.Appointment{
		ID:              w.ID,
		ClientID:        w.ClientID,
		ClientName:      w.ClientName,
		AppointmentTime: w.AppointmentTime.Time,
	}
	if w.EndTime != nil && !w.EndTime.IsZero() {
		end := w.EndTime.Time
		a.EndTime = &end
	}
	if w.Description != nil {
		a.Description = *w.Description
	}
	return a
}

// inputWire is the request body for POST and PUT /schedules
type inputWire struct {
	ClientID        *int64           `json:"client_id,omitempty"`
	AppointmentTime model.Timestamp  `json:"appointment_time"`
	EndTime         *model.Timestamp `json:"end_time,omitempty"`
	Description     *string          `json:"description,omitempty"`
}

func newInputWire(in model.AppointmentInput) inputWire {
	w := inputWire{
		ClientID:        in.ClientID,
		AppointmentTime: model.Timestamp{Time: in.AppointmentTime},
		Description:     in.Description,
	}
	if in.EndTime != nil {
		w.EndTime = &model.Timestamp{Time: *in.EndTime}
	}
	return w
}

// decodeAppointment accepts both a bare row and the {message, appointment} envelope
func decodeAppointment(data []byte) (model.Appointment, error) {
	var envelope struct {
		Appointment *appointmentWire `json:"appointment"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Appointment != nil {
		return envelope.Appointment.toModel(), nil
	}

	var w appointmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.Appointment{}, err
	}
	return w.toModel(), nil
}

type errorBody struct {
	Error string `json:"error"`
}

// requestTimeout bounds calls made without a caller deadline
const requestTimeout = 15 * time.Second

// Package ics renders appointments as iCalendar data
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"apptcal/internal/model"
)

const productID = "-//apptcal//appointment calendar//EN"

// UID is the stable iCalendar identifier of an appointment
func UID(id int64) string {
	return fmt.Sprintf("appointment-%d@apptcal", id)
}

// Calendar builds a PUBLISH calendar holding every appointment.
// Open-ended appointments last one slot.
func Calendar(appointments []model.Appointment, slot time.Duration, stamp time.Time) *ical.Calendar {
	cal := newCalendar(ical.MethodPublish)
	for _, a := range appointments {
		addEvent(cal, a, slot, stamp)
	}
	return cal
}

// Export writes appointments to w as an .ics document
func Export(w io.Writer, appointments []model.Appointment, slot time.Duration, stamp time.Time) error {
	return Calendar(appointments, slot, stamp).SerializeTo(w)
}

// Invite builds a REQUEST calendar inviting attendee to a single appointment
func Invite(a model.Appointment, slot time.Duration, organizer, attendee string, stamp time.Time) *ical.Calendar {
	cal := newCalendar(ical.MethodRequest)
	ev := addEvent(cal, a, slot, stamp)
	if organizer != "" {
		ev.SetOrganizer("mailto:" + organizer)
	}
	if attendee != "" {
		ev.AddAttendee("mailto:"+attendee,
			ical.CalendarUserTypeIndividual,
			ical.ParticipationStatusNeedsAction,
			ical.ParticipationRoleReqParticipant,
			ical.WithRSVP(true),
		)
	}
	return cal
}

func newCalendar(method ical.Method) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(method)
	return cal
}

func addEvent(cal *ical.Calendar, a model.Appointment, slot time.Duration, stamp time.Time) *ical.VEvent {
	ev := cal.AddEvent(UID(a.ID))
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(a.AppointmentTime)
	ev.SetEndAt(a.EffectiveEnd(slot))
	ev.SetSummary(model.Title(a.ClientName, a.Description))
	if a.Description != "" {
		ev.SetDescription(a.Description)
	}
	return ev
}

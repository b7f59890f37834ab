package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/internal/model"
)

var stamp = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func sample() []model.Appointment {
	end := time.Date(2024, 1, 10, 9, 45, 0, 0, time.Local)
	return []model.Appointment{
		{ID: 7, ClientName: "Ada", AppointmentTime: time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local), EndTime: &end, Description: "Checkup"},
		{ID: 8, ClientName: "Bo", AppointmentTime: time.Date(2024, 1, 11, 14, 0, 0, 0, time.Local)},
	}
}

func TestExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sample(), 30*time.Minute, stamp))

	cal, err := ical.ParseCalendar(&buf)
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, UID(7), events[0].Id())
	assert.Equal(t, "Ada - Checkup", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(sample()[0].AppointmentTime))
	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, end.Sub(start))

	assert.Equal(t, "Bo - No description", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Nil(t, events[1].GetProperty(ical.ComponentPropertyDescription))
	start, _ = events[1].GetStartAt()
	end, _ = events[1].GetEndAt()
	assert.Equal(t, 30*time.Minute, end.Sub(start), "open-ended appointments last one slot")
}

func TestInvite(t *testing.T) {
	cal := Invite(sample()[0], 30*time.Minute, "desk@example.com", "ada@example.com", stamp)
	out := cal.Serialize()

	assert.Contains(t, out, "METHOD:REQUEST")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))

	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "mailto:desk@example.com", events[0].GetProperty(ical.ComponentPropertyOrganizer).Value)

	attendees := events[0].Attendees()
	require.Len(t, attendees, 1)
	assert.Equal(t, "ada@example.com", attendees[0].Email())
	assert.Equal(t, []string{"true"}, attendees[0].ICalParameters[string(ical.ParameterRsvp)])

	// long lines are folded; the parameter survives unfolding
	unfolded := strings.NewReplacer("\r\n ", "", "\n ", "").Replace(out)
	assert.Contains(t, strings.ToUpper(unfolded), "RSVP=TRUE")
}

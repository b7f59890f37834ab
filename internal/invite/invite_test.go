package invite

import (
	"bytes"
	"errors"
	"io"
	"net/smtp"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/config"
	"apptcal/internal/model"
)

func sampleInvitation() Invitation {
	end := time.Date(2024, 1, 10, 9, 30, 0, 0, time.Local)
	return Invitation{
		Appointment: model.Appointment{
			ID:              7,
			ClientID:        1,
			ClientName:      "Ada",
			AppointmentTime: time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local),
			EndTime:         &end,
			Description:     "Checkup",
		},
		Client: model.Client{ID: 1, Name: "Ada", Email: "ada@example.com"},
		Slot:   30 * time.Minute,
	}
}

func TestCompose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Compose(&buf, "desk@example.com", sampleInvitation(), time.Now()))

	mr, err := mail.CreateReader(&buf)
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Appointment: Wed Jan 10, 2024 9:00 AM", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "ada@example.com", to[0].Address)

	var types []string
	var attachment string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		body, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			types = append(types, ct)
			if ct == "text/plain" {
				assert.Contains(t, string(body), "Hello Ada")
				assert.Contains(t, string(body), "until 9:30 AM")
			}
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			attachment = filename
			assert.Contains(t, string(body), "METHOD:REQUEST")
		}
	}

	assert.Equal(t, []string{"text/plain", "text/calendar"}, types)
	assert.Equal(t, "invite.ics", attachment)
}

func TestComposeNeedsRecipient(t *testing.T) {
	inv := sampleInvitation()
	inv.Client.Email = ""

	err := Compose(io.Discard, "desk@example.com", inv, time.Now())
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSend(t *testing.T) {
	s := NewSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "desk", Password: "pw", From: "desk@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		assert.NotNil(t, a)
		assert.NotEmpty(t, msg)
		return nil
	}

	require.NoError(t, s.Send(sampleInvitation()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "desk@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)

	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay down")
	}
	assert.ErrorContains(t, s.Send(sampleInvitation()), "relay down")
}

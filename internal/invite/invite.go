// Package invite e-mails appointment invitations with an iCalendar attachment
package invite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"apptcal/config"
	"apptcal/internal/ics"
	"apptcal/internal/logging"
	"apptcal/internal/model"
)

// ErrNoRecipient is returned when the client has no e-mail address
var ErrNoRecipient = errors.New("client has no email address")

const timeLayout = "Mon Jan 2, 2006 3:04 PM"

// Invitation is one appointment addressed to one client
type Invitation struct {
	Appointment model.Appointment
	Client      model.Client
	Slot        time.Duration
}

// Subject is the mail subject line
func (inv Invitation) Subject() string {
	return fmt.Sprintf("Appointment: %s", inv.Appointment.AppointmentTime.Format(timeLayout))
}

// Body is the plain-text part of the mail
func (inv Invitation) Body() string {
	a := inv.Appointment
	end := a.EffectiveEnd(inv.Slot)

	var b bytes.Buffer
	fmt.Fprintf(&b, "Hello %s,\n\n", inv.Client.Name)
	fmt.Fprintf(&b, "You have an appointment on %s until %s.\n", a.AppointmentTime.Format(timeLayout), end.Format("3:04 PM"))
	if a.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Description)
	}
	b.WriteString("\nThe attached invitation can be added to your calendar.\n")
	return b.String()
}

// Compose writes the MIME message: a text part and the invitation as both
// an inline text/calendar part and an .ics attachment.
func Compose(w io.Writer, from string, inv Invitation, now time.Time) error {
	if inv.Client.Email == "" {
		return ErrNoRecipient
	}

	cal := ics.Invite(inv.Appointment, inv.Slot, from, inv.Client.Email, now)
	calendar := cal.Serialize()

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Name: inv.Client.Name, Address: inv.Client.Email}})
	h.SetSubject(inv.Subject())
	if err := h.GenerateMessageID(); err != nil {
		return err
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	if err := writePart(tw, "text/plain", map[string]string{"charset": "utf-8"}, inv.Body()); err != nil {
		return err
	}
	if err := writePart(tw, "text/calendar", map[string]string{"charset": "utf-8", "method": "REQUEST"}, calendar); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}

	var ah mail.AttachmentHeader
	ah.SetContentType("application/ics", nil)
	ah.SetFilename("invite.ics")
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(aw, calendar); err != nil {
		return err
	}
	if err := aw.Close(); err != nil {
		return err
	}

	return mw.Close()
}

func writePart(tw *mail.InlineWriter, contentType string, params map[string]string, body string) error {
	var h mail.InlineHeader
	h.SetContentType(contentType, params)
	pw, err := tw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return err
	}
	return pw.Close()
}

// Sender delivers invitations through an SMTP relay
type Sender struct {
	cfg      config.SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a sender for cfg
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg, sendMail: smtp.SendMail}
}

// Send composes inv and hands it to the relay
func (s *Sender) Send(inv Invitation) error {
	var msg bytes.Buffer
	if err := Compose(&msg, s.cfg.From, inv, time.Now()); err != nil {
		return fmt.Errorf("failed to compose invitation: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.sendMail(addr, auth, s.cfg.From, []string{inv.Client.Email}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}
	logging.Log.Info("invitation sent",
		zap.Int64("appointment_id", inv.Appointment.ID),
		zap.String("to", inv.Client.Email))
	return nil
}

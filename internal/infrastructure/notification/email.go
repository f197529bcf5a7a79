package notification

import (
	"context"
	"errors"

	"github.com/sangkips/clinic-api/pkg/email"
)

// EmailSender delivers appointment reminder emails
type EmailSender interface {
	SendAppointmentReminder(ctx context.Context, to string, data email.AppointmentReminder) error
}

// ErrEmailDisabled is returned when SMTP is not configured
var ErrEmailDisabled = errors.New("email delivery is not configured")

// SMTPEmailSender adapts the SMTP email service
type SMTPEmailSender struct {
	svc *email.EmailService
}

func NewSMTPEmailSender(svc *email.EmailService) *SMTPEmailSender {
	return &SMTPEmailSender{svc: svc}
}

func (s *SMTPEmailSender) SendAppointmentReminder(ctx context.Context, to string, data email.AppointmentReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.svc.SendAppointmentReminder(to, data)
}

// DisabledEmailSender fails every send with ErrEmailDisabled
type DisabledEmailSender struct{}

func (DisabledEmailSender) SendAppointmentReminder(context.Context, string, email.AppointmentReminder) error {
	return ErrEmailDisabled
}

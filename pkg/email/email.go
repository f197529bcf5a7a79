package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Enabled reports whether enough configuration is present to send mail
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// AppointmentReminder is the data rendered into a reminder email
type AppointmentReminder struct {
	ClinicName  string
	ClinicPhone string
	PatientName string
	DoctorName  string
	StartTime   time.Time
	Location    *time.Location
}

// When formats the appointment start in the clinic timezone
func (r AppointmentReminder) When() string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return r.StartTime.In(loc).Format("Monday, 2 January 2006 at 15:04 MST")
}

// SendAppointmentReminder sends an appointment reminder email
func (s *EmailService) SendAppointmentReminder(toEmail string, data AppointmentReminder) error {
	htmlContent, err := s.render("appointment_reminder", appointmentReminderTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Appointment reminder - %s", data.ClinicName)
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, htmlContent))
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

func (s *EmailService) render(name, text string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const appointmentReminderTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Appointment Reminder</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background-color: #0f766e; padding: 32px 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 26px; font-weight: 600;">{{.ClinicName}}</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 36px 30px;">
                            <p style="color: #334155; font-size: 16px; line-height: 1.6; margin: 0 0 16px 0;">Hello {{.PatientName}},</p>
                            <p style="color: #334155; font-size: 16px; line-height: 1.6; margin: 0 0 16px 0;">
                                This is a reminder of your appointment{{if .DoctorName}} with <strong>{{.DoctorName}}</strong>{{end}} on
                                <strong>{{.When}}</strong>.
                            </p>
                            {{if .ClinicPhone}}
                            <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0;">
                                If you need to reschedule or cancel, please call us on {{.ClinicPhone}}.
                            </p>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #f8fafc; padding: 24px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #94a3b8; font-size: 12px; margin: 0;">This email was sent by {{.ClinicName}}</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`

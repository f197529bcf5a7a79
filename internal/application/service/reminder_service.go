package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/infrastructure/notification"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/email"
)

// MaxReminderAttempts caps how many sweeps may try a failing reminder
const MaxReminderAttempts = 3

// ReminderService sends appointment reminders by SMS and email
type ReminderService struct {
	tenantRepo      repository.TenantRepository
	appointmentRepo repository.AppointmentRepository
	reminderRepo    repository.ReminderLogRepository
	sms             notification.SMSSender
	email           notification.EmailSender
	defaultLead     time.Duration
	log             zerolog.Logger
	now             func() time.Time
}

// NewReminderService creates a new reminder service. defaultLeadHours applies to
// clinics that have not set their own lead time.
func NewReminderService(
	tenantRepo repository.TenantRepository,
	appointmentRepo repository.AppointmentRepository,
	reminderRepo repository.ReminderLogRepository,
	sms notification.SMSSender,
	emailSender notification.EmailSender,
	defaultLeadHours int,
	log zerolog.Logger,
) *ReminderService {
	return &ReminderService{
		tenantRepo:      tenantRepo,
		appointmentRepo: appointmentRepo,
		reminderRepo:    reminderRepo,
		sms:             sms,
		email:           emailSender,
		defaultLead:     time.Duration(defaultLeadHours) * time.Hour,
		log:             log.With().Str("component", "reminders").Logger(),
		now:             time.Now,
	}
}

// RunSummary counts the outcome of one sweep
type RunSummary struct {
	Clinics int `json:"clinics"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Run performs one reminder sweep over every clinic with reminders enabled.
// Each appointment and channel is attempted at most once per sweep.
func (s *ReminderService) Run(ctx context.Context) (*RunSummary, error) {
	tenants, err := s.tenantRepo.ListWithReminders(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{}
	for i := range tenants {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		tenant := &tenants[i]
		if err := s.runClinic(infraRepo.WithTenant(ctx, tenant.ID), tenant, summary); err != nil {
			s.log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("reminder sweep failed for clinic")
			continue
		}
		summary.Clinics++
	}

	s.log.Info().
		Int("clinics", summary.Clinics).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("reminder sweep finished")
	return summary, nil
}

func (s *ReminderService) runClinic(ctx context.Context, tenant *entity.Tenant, summary *RunSummary) error {
	lead := s.defaultLead
	if tenant.Settings.ReminderLeadHours > 0 {
		lead = time.Duration(tenant.Settings.ReminderLeadHours) * time.Hour
	}

	now := s.now()
	appointments, err := s.appointmentRepo.ListStartingBetween(ctx, tenant.ID, now, now.Add(lead))
	if err != nil {
		return err
	}

	for i := range appointments {
		appointment := &appointments[i]
		if appointment.Patient == nil {
			summary.Skipped++
			continue
		}
		if tenant.Settings.SMSReminders {
			s.deliver(ctx, tenant, appointment, enum.ReminderChannelSMS, summary)
		}
		if tenant.Settings.EmailReminders {
			s.deliver(ctx, tenant, appointment, enum.ReminderChannelEmail, summary)
		}
	}
	return nil
}

func (s *ReminderService) deliver(ctx context.Context, tenant *entity.Tenant, appointment *entity.Appointment, channel enum.ReminderChannel, summary *RunSummary) {
	recipient := reminderRecipient(appointment.Patient, channel)
	if recipient == "" {
		summary.Skipped++
		return
	}

	logger := s.log.With().
		Str("tenant_id", tenant.ID.String()).
		Str("appointment_id", appointment.ID.String()).
		Str("channel", string(channel)).
		Logger()

	previous, err := s.reminderRepo.Get(ctx, appointment.ID, channel)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read reminder log")
		summary.Failed++
		return
	}
	attempts := 0
	if previous != nil {
		if previous.Status == enum.ReminderStatusSent || previous.Attempts >= MaxReminderAttempts {
			summary.Skipped++
			return
		}
		attempts = previous.Attempts
	}

	data := reminderData(tenant, appointment)
	var providerRef string
	switch channel {
	case enum.ReminderChannelSMS:
		providerRef, err = s.sms.SendSMS(ctx, recipient, reminderText(data))
	case enum.ReminderChannelEmail:
		err = s.email.SendAppointmentReminder(ctx, recipient, data)
	}

	entry := &entity.ReminderLog{
		TenantID:      tenant.ID,
		AppointmentID: appointment.ID,
		Channel:       channel,
		Recipient:     recipient,
		Status:        enum.ReminderStatusSent,
		Attempts:      attempts + 1,
		SentAt:        s.now(),
	}
	if providerRef != "" {
		entry.ProviderRef = &providerRef
	}
	if err != nil {
		msg := err.Error()
		entry.Status = enum.ReminderStatusFailed
		entry.Error = &msg
		summary.Failed++
		logger.Warn().Err(err).Int("attempts", entry.Attempts).Msg("reminder send failed")
	} else {
		summary.Sent++
		logger.Debug().Msg("reminder sent")
	}

	if err := s.reminderRepo.Save(ctx, entry); err != nil {
		logger.Error().Err(err).Msg("failed to record reminder")
	}
}

func reminderData(tenant *entity.Tenant, appointment *entity.Appointment) email.AppointmentReminder {
	data := email.AppointmentReminder{
		ClinicName:  tenant.Name,
		ClinicPhone: tenant.Settings.Phone,
		PatientName: appointment.Patient.FullName(),
		StartTime:   appointment.StartTime,
		Location:    tenant.Settings.Location(),
	}
	if appointment.Doctor != nil {
		data.DoctorName = appointment.Doctor.FullName()
	}
	return data
}

func reminderRecipient(patient *entity.Patient, channel enum.ReminderChannel) string {
	var v *string
	if channel == enum.ReminderChannelSMS {
		v = patient.Phone
	} else {
		v = patient.Email
	}
	if v == nil {
		return ""
	}
	return *v
}

func reminderText(data email.AppointmentReminder) string {
	with := ""
	if data.DoctorName != "" {
		with = " with " + data.DoctorName
	}
	return fmt.Sprintf("Hello %s, this is a reminder of your appointment%s at %s on %s.",
		data.PatientName, with, data.ClinicName, data.When())
}

// Schedule registers Run on a cron schedule and starts the scheduler.
// The caller stops it with Stop on shutdown.
func (s *ReminderService) Schedule(ctx context.Context, expr string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(expr, func() {
		if _, err := s.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("reminder sweep aborted")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}
	c.Start()
	s.log.Info().Str("schedule", expr).Msg("reminder scheduler started")
	return c, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
)

const (
	maxAppointmentMinutes = 8 * 60
	maxReminderLeadHours  = 7 * 24
)

// SettingsService reads and writes the administrative settings of the current clinic
type SettingsService struct {
	tenantRepo repository.TenantRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(tenantRepo repository.TenantRepository) *SettingsService {
	return &SettingsService{tenantRepo: tenantRepo}
}

func (s *SettingsService) currentTenant(ctx context.Context) (*entity.Tenant, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Clinic")
	}
	return tenant, nil
}

// GetSettings returns the clinic settings
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.ClinicSettings, error) {
	tenant, err := s.currentTenant(ctx)
	if err != nil {
		return nil, err
	}
	return &tenant.Settings, nil
}

// UpdateSettings validates and stores new clinic settings
func (s *SettingsService) UpdateSettings(ctx context.Context, settings *entity.ClinicSettings) (*entity.ClinicSettings, error) {
	if fieldErrors := ValidateClinicSettings(settings); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	tenant, err := s.currentTenant(ctx)
	if err != nil {
		return nil, err
	}

	settings.Currency = strings.ToUpper(settings.Currency)
	tenant.Settings = *settings
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return &tenant.Settings, nil
}

// ValidateClinicSettings returns one error per invalid field
func ValidateClinicSettings(cs *entity.ClinicSettings) []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	if cs.Timezone != "" {
		if _, err := time.LoadLocation(cs.Timezone); err != nil {
			add("timezone", "unknown timezone")
		}
	}
	if cs.Currency != "" && len(cs.Currency) != 3 {
		add("currency", "currency must be a 3 letter ISO code")
	}
	if cs.DefaultAppointmentMinutes < 0 || cs.DefaultAppointmentMinutes > maxAppointmentMinutes {
		add("default_appointment_minutes", fmt.Sprintf("must be between 0 and %d", maxAppointmentMinutes))
	}
	if cs.ReminderLeadHours < 0 || cs.ReminderLeadHours > maxReminderLeadHours {
		add("reminder_lead_hours", fmt.Sprintf("must be between 0 and %d", maxReminderLeadHours))
	}

	seen := make(map[time.Weekday]bool)
	for i, wh := range cs.WorkingHours {
		field := fmt.Sprintf("working_hours[%d]", i)
		if wh.Weekday < time.Sunday || wh.Weekday > time.Saturday {
			add(field+".weekday", "weekday must be 0 (Sunday) to 6 (Saturday)")
			continue
		}
		if seen[wh.Weekday] {
			add(field+".weekday", "weekday listed more than once")
		}
		seen[wh.Weekday] = true

		open, errOpen := time.Parse("15:04", wh.Open)
		closing, errClose := time.Parse("15:04", wh.Close)
		if errOpen != nil {
			add(field+".open", "must be HH:MM")
		}
		if errClose != nil {
			add(field+".close", "must be HH:MM")
		}
		if errOpen == nil && errClose == nil && !closing.After(open) {
			add(field+".close", "closing time must be after opening time")
		}
	}

	return errs
}

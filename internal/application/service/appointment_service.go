package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/domain/scheduling"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

const (
	MsgInvalidTimeSlot = "end time must be after start time"
	MsgDoctorBusy      = "doctor already has an appointment in this time slot"

	defaultAppointmentMinutes = 30
)

// AppointmentService books and manages doctor appointments
type AppointmentService struct {
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	userRepo        repository.UserRepository
	tenantRepo      repository.TenantRepository
	tx              repository.Transactor
	now             func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	tx repository.Transactor,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		userRepo:        userRepo,
		tenantRepo:      tenantRepo,
		tx:              tx,
		now:             time.Now,
	}
}

// CreateAppointmentInput represents the create appointment input
type CreateAppointmentInput struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Status    enum.AppointmentStatus
	Reason    *string
	Notes     *string
	CreatedBy uuid.UUID
}

// CreateAppointment books a slot for a patient with a doctor. The conflict check and
// the insert run in one transaction holding the doctor's schedule lock.
func (s *AppointmentService) CreateAppointment(ctx context.Context, input *CreateAppointmentInput) (*entity.Appointment, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	if !scheduling.IsValidTimeSlot(input.StartTime, input.EndTime) {
		return nil, apperror.NewBadRequestError(MsgInvalidTimeSlot)
	}

	status := input.Status
	if status == "" {
		status = enum.AppointmentStatusScheduled
	}
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid appointment status")
	}

	if err := s.ensurePatient(ctx, input.PatientID); err != nil {
		return nil, err
	}
	if err := s.ensureDoctor(ctx, tenantID, input.DoctorID); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		TenantID:  tenantID,
		PatientID: input.PatientID,
		DoctorID:  input.DoctorID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    status,
		Reason:    input.Reason,
		Notes:     input.Notes,
		CreatedBy: input.CreatedBy,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if scheduling.ShouldCheckForConflicts(appointment.Status) {
			if err := s.checkConflicts(ctx, appointment); err != nil {
				return err
			}
		}
		return s.appointmentRepo.Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, appointment)
}

// checkConflicts must run inside a transaction. It takes the doctor's schedule
// lock and rejects the appointment if an active booking overlaps it.
func (s *AppointmentService) checkConflicts(ctx context.Context, appointment *entity.Appointment) error {
	if err := s.appointmentRepo.LockDoctorSchedule(ctx, appointment.DoctorID); err != nil {
		return fmt.Errorf("lock doctor schedule: %w", err)
	}

	existing, err := s.appointmentRepo.ListForDoctorBetween(ctx, appointment.DoctorID, appointment.StartTime, appointment.EndTime)
	if err != nil {
		return err
	}

	excludeID := ""
	if appointment.ID != uuid.Nil {
		excludeID = appointment.ID.String()
	}
	if _, conflict := scheduling.FirstConflict(appointment.Slot(), entity.Bookings(existing), excludeID); conflict {
		return apperror.NewConflictError(MsgDoctorBusy)
	}
	return nil
}

func (s *AppointmentService) ensurePatient(ctx context.Context, patientID uuid.UUID) error {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return apperror.NewNotFoundError("Patient")
	}
	return nil
}

func (s *AppointmentService) ensureDoctor(ctx context.Context, tenantID, doctorID uuid.UUID) error {
	doctor, err := s.userRepo.GetWithRoles(ctx, doctorID)
	if err != nil {
		return err
	}
	if doctor == nil || !doctor.HasRole(entity.RoleDoctor) {
		return apperror.NewBadRequestError("Selected user is not a doctor")
	}

	isMember, err := s.tenantRepo.IsMember(ctx, tenantID, doctorID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperror.NewBadRequestError("Doctor does not practice at this clinic")
	}
	return nil
}

func (s *AppointmentService) reload(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error) {
	loaded, err := s.appointmentRepo.GetByID(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return appointment, nil
	}
	return loaded, nil
}

// GetAppointment retrieves an appointment by ID
func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.NewNotFoundError("Appointment")
	}
	return appointment, nil
}

// ListAppointments lists appointments matching the filter
func (s *AppointmentService) ListAppointments(ctx context.Context, filter repository.AppointmentFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Appointment], error) {
	params.Validate()
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewBadRequestError("'to' must not be before 'from'")
	}

	appointments, total, err := s.appointmentRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(appointments, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateAppointmentInput represents the update appointment input. Nil fields are left unchanged.
type UpdateAppointmentInput struct {
	ID        uuid.UUID
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	Status    *enum.AppointmentStatus
	Reason    *string
	Notes     *string
}

// UpdateAppointment reschedules or edits an appointment. Completed, cancelled and
// no-show appointments are read-only. The appointment never conflicts with itself.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, input *UpdateAppointmentInput) (*entity.Appointment, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	current, err := s.GetAppointment(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("A %s appointment cannot be edited", current.Status))
	}

	next := *current
	next.Patient = nil
	next.Doctor = nil

	if input.PatientID != nil && *input.PatientID != current.PatientID {
		if err := s.ensurePatient(ctx, *input.PatientID); err != nil {
			return nil, err
		}
		next.PatientID = *input.PatientID
	}
	if input.DoctorID != nil && *input.DoctorID != current.DoctorID {
		if err := s.ensureDoctor(ctx, tenantID, *input.DoctorID); err != nil {
			return nil, err
		}
		next.DoctorID = *input.DoctorID
	}
	if input.StartTime != nil && !input.StartTime.Equal(current.StartTime) {
		next.StartTime = *input.StartTime
	}
	if input.EndTime != nil && !input.EndTime.Equal(current.EndTime) {
		next.EndTime = *input.EndTime
	}
	if input.Status != nil && *input.Status != current.Status {
		if err := checkTransition(current.Status, *input.Status); err != nil {
			return nil, err
		}
		next.Status = *input.Status
	}
	if input.Reason != nil {
		next.Reason = input.Reason
	}
	if input.Notes != nil {
		next.Notes = input.Notes
	}

	if !scheduling.IsValidTimeSlot(next.StartTime, next.EndTime) {
		return nil, apperror.NewBadRequestError(MsgInvalidTimeSlot)
	}

	if err := s.save(ctx, current, &next); err != nil {
		return nil, err
	}
	return s.reload(ctx, &next)
}

// UpdateStatus moves an appointment to a new status
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.AppointmentStatus, reason *string) (*entity.Appointment, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid appointment status")
	}

	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if err := checkTransition(current.Status, status); err != nil {
		return nil, err
	}

	next := *current
	next.Patient = nil
	next.Doctor = nil
	next.Status = status
	if status == enum.AppointmentStatusCancelled && reason != nil {
		next.CancelledReason = reason
	}

	if err := s.save(ctx, current, &next); err != nil {
		return nil, err
	}
	return s.reload(ctx, &next)
}

// CancelAppointment cancels an appointment, freeing the doctor's slot
func (s *AppointmentService) CancelAppointment(ctx context.Context, id uuid.UUID, reason *string) (*entity.Appointment, error) {
	return s.UpdateStatus(ctx, id, enum.AppointmentStatusCancelled, reason)
}

// save persists next, re-running the conflict check when the change makes the
// appointment occupy time it did not occupy before.
func (s *AppointmentService) save(ctx context.Context, current, next *entity.Appointment) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if needsConflictCheck(current, next) {
			if err := s.checkConflicts(ctx, next); err != nil {
				return err
			}
		}
		return s.appointmentRepo.Update(ctx, next)
	})
}

func needsConflictCheck(current, next *entity.Appointment) bool {
	if !scheduling.ShouldCheckForConflicts(next.Status) {
		return false
	}
	if !scheduling.ShouldCheckForConflicts(current.Status) {
		return true
	}
	return current.DoctorID != next.DoctorID ||
		!current.StartTime.Equal(next.StartTime) ||
		!current.EndTime.Equal(next.EndTime)
}

func checkTransition(from, to enum.AppointmentStatus) error {
	if !to.IsValid() {
		return apperror.NewBadRequestError("Invalid appointment status")
	}
	if from.IsTerminal() {
		return apperror.NewBadRequestError(fmt.Sprintf("Cannot change status of a %s appointment", from))
	}
	return nil
}

// DeleteAppointment removes an appointment that never took place
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	appointment, err := s.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	switch appointment.Status {
	case enum.AppointmentStatusScheduled, enum.AppointmentStatusCancelled:
	default:
		return apperror.NewBadRequestError("Only scheduled or cancelled appointments can be deleted")
	}

	return s.appointmentRepo.Delete(ctx, id)
}

// AvailabilityInput represents a request for a doctor's open slots on a day
type AvailabilityInput struct {
	DoctorID        uuid.UUID
	Date            string
	DurationMinutes int
}

// Availability lists the open slots of a doctor on one day
type Availability struct {
	DoctorID uuid.UUID             `json:"doctor_id"`
	Date     string                `json:"date"`
	Timezone string                `json:"timezone"`
	Duration int                   `json:"duration_minutes"`
	Slots    []scheduling.TimeSlot `json:"slots"`
}

// GetAvailability splits the clinic's working hours for the date into slots and
// drops those that overlap the doctor's active bookings or have already started.
func (s *AppointmentService) GetAvailability(ctx context.Context, input *AvailabilityInput) (*Availability, error) {
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
	settings := tenant.Settings
	loc := settings.Location()

	day, err := time.ParseInLocation("2006-01-02", input.Date, loc)
	if err != nil {
		return nil, apperror.NewBadRequestError("date must be formatted as YYYY-MM-DD")
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = settings.DefaultAppointmentMinutes
	}
	if duration <= 0 {
		duration = defaultAppointmentMinutes
	}

	if err := s.ensureDoctor(ctx, tenantID, input.DoctorID); err != nil {
		return nil, err
	}

	out := &Availability{
		DoctorID: input.DoctorID,
		Date:     day.Format("2006-01-02"),
		Timezone: loc.String(),
		Duration: duration,
		Slots:    []scheduling.TimeSlot{},
	}

	hours, open := settings.HoursFor(day.Weekday())
	if !open {
		return out, nil
	}
	window, err := workingWindow(day, hours)
	if err != nil {
		return nil, err
	}

	bookings, err := s.appointmentRepo.ListForDoctorBetween(ctx, input.DoctorID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, slot := range scheduling.FreeSlots(window, time.Duration(duration)*time.Minute, entity.Bookings(bookings)) {
		if slot.Start.Before(now) {
			continue
		}
		out.Slots = append(out.Slots, slot)
	}
	return out, nil
}

func workingWindow(day time.Time, hours entity.WorkingHours) (scheduling.TimeSlot, error) {
	open, err := clockOn(day, hours.Open)
	if err != nil {
		return scheduling.TimeSlot{}, err
	}
	closing, err := clockOn(day, hours.Close)
	if err != nil {
		return scheduling.TimeSlot{}, err
	}
	return scheduling.TimeSlot{Start: open, End: closing}, nil
}

// clockOn places an "HH:MM" wall clock time on the given day in the day's location
func clockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid working hours %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

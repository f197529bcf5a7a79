package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// AppointmentFilter narrows appointment listings. Nil fields are ignored.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *enum.AppointmentStatus
	From      *time.Time
	To        *time.Time
}

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter AppointmentFilter, params *pagination.PaginationParams) ([]entity.Appointment, int64, error)

	// ListForDoctorBetween returns the doctor's appointments that overlap [from, to), in any
	// status and across every clinic the doctor works at
	ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)

	// LockDoctorSchedule serializes bookings for one doctor until the surrounding transaction ends
	LockDoctorSchedule(ctx context.Context, doctorID uuid.UUID) error

	// ListStartingBetween returns active appointments of one clinic starting in [from, to), with patients loaded.
	// It is used by background jobs and is not tenant scoped by the request context.
	ListStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)

	CountByStatusBetween(ctx context.Context, from, to time.Time) (map[enum.AppointmentStatus]int64, error)
}

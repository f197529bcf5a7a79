package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return conn(ctx, r.db).Omit("Patient", "Doctor").Create(appointment).Error
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Preload("Patient").
		Preload("Doctor").
		First(&appointment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appointment, err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return conn(ctx, r.db).Omit("Patient", "Doctor").Save(appointment).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Appointment{}, "id = ?", id).Error
}

func (r *appointmentRepository) List(ctx context.Context, filter domainRepo.AppointmentFilter, params *pagination.PaginationParams) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := conn(ctx, r.db).Model(&entity.Appointment{}).Scopes(TenantScope(ctx))
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_time < ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Patient").
		Preload("Doctor").
		Order("start_time ASC").
		Find(&appointments).Error

	return appointments, total, err
}

// ListForDoctorBetween spans every clinic. A doctor has a single calendar,
// guarded by the same lock as LockDoctorSchedule.
func (r *appointmentRepository) ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := conn(ctx, r.db).
		Where("doctor_id = ? AND start_time < ? AND end_time > ?", doctorID, to, from).
		Order("start_time ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) LockDoctorSchedule(ctx context.Context, doctorID uuid.UUID) error {
	return advisoryLock(ctx, r.db, "appointment:"+doctorID.String())
}

func (r *appointmentRepository) ListStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := conn(ctx, r.db).
		Preload("Patient").
		Preload("Doctor").
		Where("tenant_id = ? AND start_time >= ? AND start_time < ?", tenantID, from, to).
		Where("status IN ?", []enum.AppointmentStatus{enum.AppointmentStatusScheduled, enum.AppointmentStatusConfirmed}).
		Order("start_time ASC").
		Find(&appointments).Error
	return appointments, err
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *appointmentRepository) CountByStatusBetween(ctx context.Context, from, to time.Time) (map[enum.AppointmentStatus]int64, error) {
	var rows []statusCount
	err := conn(ctx, r.db).Model(&entity.Appointment{}).Scopes(TenantScope(ctx)).
		Select("status, COUNT(*) AS count").
		Where("start_time >= ? AND start_time < ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enum.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[enum.AppointmentStatus(row.Status)] = row.Count
	}
	return counts, nil
}

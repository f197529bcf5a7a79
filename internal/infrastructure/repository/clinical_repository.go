package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"gorm.io/gorm"
)

type medicalNoteRepository struct {
	db *gorm.DB
}

// NewMedicalNoteRepository creates a new medical note repository
func NewMedicalNoteRepository(db *gorm.DB) domainRepo.MedicalNoteRepository {
	return &medicalNoteRepository{db: db}
}

func (r *medicalNoteRepository) Create(ctx context.Context, note *entity.MedicalNote) error {
	return conn(ctx, r.db).Omit("Author").Create(note).Error
}

func (r *medicalNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MedicalNote, error) {
	var note entity.MedicalNote
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Preload("Author").
		First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &note, err
}

func (r *medicalNoteRepository) Update(ctx context.Context, note *entity.MedicalNote) error {
	return conn(ctx, r.db).Omit("Author").Save(note).Error
}

func (r *medicalNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.MedicalNote{}, "id = ?", id).Error
}

func (r *medicalNoteRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, params *pagination.PaginationParams) ([]entity.MedicalNote, int64, error) {
	var notes []entity.MedicalNote
	var total int64

	query := conn(ctx, r.db).Model(&entity.MedicalNote{}).Scopes(TenantScope(ctx)).
		Where("patient_id = ?", patientID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Author").
		Order("created_at DESC").
		Find(&notes).Error

	return notes, total, err
}

type prescriptionRepository struct {
	db *gorm.DB
}

// NewPrescriptionRepository creates a new prescription repository
func NewPrescriptionRepository(db *gorm.DB) domainRepo.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) error {
	return conn(ctx, r.db).Omit("Doctor").Create(prescription).Error
}

func (r *prescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Preload("Items").
		Preload("Doctor").
		First(&prescription, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &prescription, err
}

func (r *prescriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PrescriptionStatus) error {
	return conn(ctx, r.db).Model(&entity.Prescription{}).Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Prescription{}, "id = ?", id).Error
}

func (r *prescriptionRepository) List(ctx context.Context, filter domainRepo.PrescriptionFilter, params *pagination.PaginationParams) ([]entity.Prescription, int64, error) {
	var prescriptions []entity.Prescription
	var total int64

	query := conn(ctx, r.db).Model(&entity.Prescription{}).Scopes(TenantScope(ctx))
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items").
		Preload("Doctor").
		Order("created_at DESC").
		Find(&prescriptions).Error

	return prescriptions, total, err
}

type labOrderRepository struct {
	db *gorm.DB
}

// NewLabOrderRepository creates a new lab order repository
func NewLabOrderRepository(db *gorm.DB) domainRepo.LabOrderRepository {
	return &labOrderRepository{db: db}
}

func (r *labOrderRepository) Create(ctx context.Context, order *entity.LabOrder) error {
	return conn(ctx, r.db).Create(order).Error
}

func (r *labOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LabOrder, error) {
	var order entity.LabOrder
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *labOrderRepository) Update(ctx context.Context, order *entity.LabOrder) error {
	return conn(ctx, r.db).Save(order).Error
}

func (r *labOrderRepository) List(ctx context.Context, filter domainRepo.LabOrderFilter, params *pagination.PaginationParams) ([]entity.LabOrder, int64, error) {
	var orders []entity.LabOrder
	var total int64

	query := conn(ctx, r.db).Model(&entity.LabOrder{}).Scopes(TenantScope(ctx))
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&orders).Error

	return orders, total, err
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"gorm.io/gorm"
)

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) domainRepo.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	return conn(ctx, r.db).Create(patient).Error
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&patient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &patient, err
}

func (r *patientRepository) GetByMRN(ctx context.Context, mrn string) (*entity.Patient, error) {
	var patient entity.Patient
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&patient, "mrn = ?", mrn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &patient, err
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&patient, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &patient, err
}

func (r *patientRepository) Update(ctx context.Context, patient *entity.Patient) error {
	return conn(ctx, r.db).Save(patient).Error
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.Patient{}, "id = ?", id).Error
}

func (r *patientRepository) search(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}
	like := "%" + search + "%"
	return query.Where("first_name ILIKE ? OR last_name ILIKE ? OR mrn ILIKE ? OR phone ILIKE ? OR email ILIKE ?",
		like, like, like, like, like)
}

func (r *patientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Patient, int64, error) {
	var patients []entity.Patient
	var total int64

	query := r.search(conn(ctx, r.db).Model(&entity.Patient{}).Scopes(TenantScope(ctx)), search)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("last_name ASC, first_name ASC").
		Find(&patients).Error

	return patients, total, err
}

// ListWithCursor returns patients using cursor-based pagination
// Fetches limit+1 items to detect if there are more results
func (r *patientRepository) ListWithCursor(ctx context.Context, params *pagination.CursorParams, search string) ([]entity.Patient, error) {
	var patients []entity.Patient

	params.Validate()
	query := r.search(conn(ctx, r.db).Model(&entity.Patient{}).Scopes(TenantScope(ctx)), search)

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}

	if cursor != nil {
		if params.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	err = query.Limit(params.Limit + 1).
		Order("created_at ASC, id ASC").
		Find(&patients).Error

	return patients, err
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Patient{}).Scopes(TenantScope(ctx)).Count(&count).Error
	return count, err
}

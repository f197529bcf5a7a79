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
	"gorm.io/gorm/clause"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *gorm.DB) domainRepo.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return conn(ctx, r.db).Create(log).Error
}

func (r *auditRepository) List(ctx context.Context, filter domainRepo.AuditFilter, params *pagination.PaginationParams) ([]entity.AuditLog, int64, error) {
	var logs []entity.AuditLog
	var total int64

	query := conn(ctx, r.db).Model(&entity.AuditLog{}).Scopes(TenantScope(ctx))
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&logs).Error

	return logs, total, err
}

type reminderLogRepository struct {
	db *gorm.DB
}

// NewReminderLogRepository creates a new reminder log repository
func NewReminderLogRepository(db *gorm.DB) domainRepo.ReminderLogRepository {
	return &reminderLogRepository{db: db}
}

func (r *reminderLogRepository) Get(ctx context.Context, appointmentID uuid.UUID, channel enum.ReminderChannel) (*entity.ReminderLog, error) {
	var log entity.ReminderLog
	err := conn(ctx, r.db).
		First(&log, "appointment_id = ? AND channel = ?", appointmentID, channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &log, err
}

func (r *reminderLogRepository) Save(ctx context.Context, log *entity.ReminderLog) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "appointment_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"recipient", "status", "provider_ref", "attempts", "error", "sent_at"}),
	}).Create(log).Error
}

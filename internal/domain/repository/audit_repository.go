package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// AuditFilter narrows audit log listings
type AuditFilter struct {
	UserID   *uuid.UUID
	Resource string
	From     *time.Time
	To       *time.Time
}

// AuditRepository persists and queries audit entries
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, filter AuditFilter, params *pagination.PaginationParams) ([]entity.AuditLog, int64, error)
}

// ReminderLogRepository tracks reminder deliveries
type ReminderLogRepository interface {
	// Get returns the log for an appointment and channel, or nil
	Get(ctx context.Context, appointmentID uuid.UUID, channel enum.ReminderChannel) (*entity.ReminderLog, error)
	// Save inserts or replaces the log for the appointment and channel
	Save(ctx context.Context, log *entity.ReminderLog) error
}

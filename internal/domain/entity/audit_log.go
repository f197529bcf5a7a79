package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"gorm.io/gorm"
)

// AuditLog records a mutating request against clinic data
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id,omitempty"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"size:20;not null" json:"action"`
	Resource   string     `gorm:"size:100;not null;index" json:"resource"`
	ResourceID *string    `gorm:"size:64" json:"resource_id,omitempty"`
	Method     string     `gorm:"size:10;not null" json:"method"`
	Path       string     `gorm:"size:512;not null" json:"path"`
	StatusCode int        `json:"status_code"`
	IPAddress  string     `gorm:"size:64" json:"ip_address"`
	UserAgent  string     `gorm:"size:512" json:"user_agent"`
	RequestID  string     `gorm:"size:64" json:"request_id"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ReminderLog records that a reminder for an appointment went out on a channel
type ReminderLog struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	AppointmentID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_logs_appointment_channel" json:"appointment_id"`
	Channel       enum.ReminderChannel `gorm:"size:10;not null;uniqueIndex:idx_reminder_logs_appointment_channel" json:"channel"`
	Recipient     string               `gorm:"size:255;not null" json:"recipient"`
	Status        enum.ReminderStatus  `gorm:"size:10;not null" json:"status"`
	ProviderRef   *string              `gorm:"size:64" json:"provider_ref,omitempty"`
	Attempts      int                  `gorm:"not null;default:1" json:"attempts"`
	Error         *string              `gorm:"type:text" json:"error,omitempty"`
	SentAt        time.Time            `json:"sent_at"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}

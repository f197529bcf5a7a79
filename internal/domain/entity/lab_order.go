package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"gorm.io/gorm"
)

// LabOrder is a laboratory test or imaging study requested for a patient
type LabOrder struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PatientID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID          `gorm:"type:uuid" json:"appointment_id,omitempty"`
	OrderedBy     uuid.UUID           `gorm:"type:uuid;not null" json:"ordered_by"`
	Type          enum.LabOrderType   `gorm:"size:16;not null" json:"type"`
	TestName      string              `gorm:"size:255;not null" json:"test_name"`
	Priority      enum.LabPriority    `gorm:"size:16;not null;default:'ROUTINE'" json:"priority"`
	Status        enum.LabOrderStatus `gorm:"size:20;not null;default:'ORDERED';index" json:"status"`
	ClinicalNotes *string             `gorm:"type:text" json:"clinical_notes,omitempty"`
	Result        *string             `gorm:"type:text" json:"result,omitempty"`
	ResultedAt    *time.Time          `json:"resulted_at,omitempty"`
	ResultedBy    *uuid.UUID          `gorm:"type:uuid" json:"resulted_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (o *LabOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (LabOrder) TableName() string {
	return "lab_orders"
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Patient is a person registered with a clinic
type Patient struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID              uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_patients_tenant_mrn" json:"tenant_id"`
	MRN                   string         `gorm:"size:32;not null;uniqueIndex:idx_patients_tenant_mrn" json:"mrn"`
	UserID                *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	FirstName             string         `gorm:"size:255;not null" json:"first_name"`
	LastName              string         `gorm:"size:255;not null" json:"last_name"`
	DateOfBirth           *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender                enum.Gender    `gorm:"size:16;default:'UNKNOWN'" json:"gender"`
	Phone                 *string        `gorm:"size:50;index" json:"phone,omitempty"`
	Email                 *string        `gorm:"size:255" json:"email,omitempty"`
	Address               *string        `gorm:"type:text" json:"address,omitempty"`
	BloodGroup            *string        `gorm:"size:8" json:"blood_group,omitempty"`
	Allergies             *string        `gorm:"type:text" json:"allergies,omitempty"`
	EmergencyContactName  *string        `gorm:"size:255" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string        `gorm:"size:50" json:"emergency_contact_phone,omitempty"`
	CreatedBy             uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

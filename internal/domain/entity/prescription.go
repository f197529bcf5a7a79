package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Prescription groups the medications a doctor ordered for a patient
type Prescription struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID               `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PatientID     uuid.UUID               `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID               `gorm:"type:uuid;not null;index" json:"doctor_id"`
	AppointmentID *uuid.UUID              `gorm:"type:uuid" json:"appointment_id,omitempty"`
	Status        enum.PrescriptionStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	Notes         *string                 `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	DeletedAt     gorm.DeletedAt          `gorm:"index" json:"-"`

	Items  []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items,omitempty"`
	Doctor *User              `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// PrescriptionItem is one medication line
type PrescriptionItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PrescriptionID uuid.UUID `gorm:"type:uuid;not null;index" json:"prescription_id"`
	Medication     string    `gorm:"size:255;not null" json:"medication"`
	Dosage         string    `gorm:"size:100;not null" json:"dosage"`
	Frequency      string    `gorm:"size:100;not null" json:"frequency"`
	DurationDays   int       `json:"duration_days"`
	Quantity       int       `json:"quantity"`
	Instructions   *string   `gorm:"type:text" json:"instructions,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (i *PrescriptionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (PrescriptionItem) TableName() string {
	return "prescription_items"
}

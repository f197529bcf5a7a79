package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalNote is a SOAP-style clinical note written during or after a visit
type MedicalNote struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PatientID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID  *uuid.UUID     `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	AuthorID       uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	Subjective     string         `gorm:"type:text" json:"subjective"`
	Objective      string         `gorm:"type:text" json:"objective"`
	Assessment     string         `gorm:"type:text" json:"assessment"`
	Plan           string         `gorm:"type:text" json:"plan"`
	DiagnosisCodes StringList     `gorm:"type:jsonb" json:"diagnosis_codes"`
	Vitals         *Vitals        `gorm:"type:jsonb" json:"vitals,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (n *MedicalNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (MedicalNote) TableName() string {
	return "medical_notes"
}

// Vitals captured with a note
type Vitals struct {
	BloodPressure    string   `json:"blood_pressure,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	TemperatureC     *float64 `json:"temperature_c,omitempty"`
	OxygenSaturation *int     `json:"oxygen_saturation,omitempty"`
	WeightKg         *float64 `json:"weight_kg,omitempty"`
	HeightCm         *float64 `json:"height_cm,omitempty"`
}

func (v *Vitals) Scan(value interface{}) error {
	return scanJSON(value, v, "Vitals")
}

func (v Vitals) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// StringList is a list of strings stored as a JSON array
type StringList []string

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l, "StringList")
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func scanJSON(value interface{}, dst interface{}, name string) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan " + name + ": unsupported type")
	}

	return json.Unmarshal(bytes, dst)
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/scheduling"
	"gorm.io/gorm"
)

// Appointment books a doctor's time for a patient
type Appointment struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID              `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PatientID       uuid.UUID              `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID              `gorm:"type:uuid;not null;index:idx_appointments_doctor_start" json:"doctor_id"`
	StartTime       time.Time              `gorm:"not null;index:idx_appointments_doctor_start" json:"start_time"`
	EndTime         time.Time              `gorm:"not null" json:"end_time"`
	Status          enum.AppointmentStatus `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	Reason          *string                `gorm:"type:text" json:"reason,omitempty"`
	Notes           *string                `gorm:"type:text" json:"notes,omitempty"`
	CancelledReason *string                `gorm:"type:text" json:"cancelled_reason,omitempty"`
	CreatedBy       uuid.UUID              `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	DeletedAt       gorm.DeletedAt         `gorm:"index" json:"-"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Appointment) TableName() string {
	return "appointments"
}

// Slot returns the booked interval
func (a *Appointment) Slot() scheduling.TimeSlot {
	return scheduling.TimeSlot{Start: a.StartTime, End: a.EndTime}
}

// Booking returns the appointment in the form the conflict rules consume
func (a *Appointment) Booking() scheduling.Booking {
	return scheduling.Booking{ID: a.ID.String(), Slot: a.Slot(), Status: a.Status}
}

// Bookings converts a list of appointments for conflict checks
func Bookings(appointments []Appointment) []scheduling.Booking {
	out := make([]scheduling.Booking, 0, len(appointments))
	for i := range appointments {
		out = append(out, appointments[i].Booking())
	}
	return out
}

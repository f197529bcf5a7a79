package request

import "github.com/sangkips/clinic-api/internal/domain/entity"

// NoteRequest represents a SOAP note
type NoteRequest struct {
	AppointmentID  string         `json:"appointment_id" binding:"omitempty,uuid"`
	Subjective     string         `json:"subjective"`
	Objective      string         `json:"objective"`
	Assessment     string         `json:"assessment"`
	Plan           string         `json:"plan"`
	DiagnosisCodes []string       `json:"diagnosis_codes" binding:"omitempty,dive,max=20"`
	Vitals         *entity.Vitals `json:"vitals"`
}

// PrescriptionItemRequest is one prescribed medication
type PrescriptionItemRequest struct {
	Medication   string  `json:"medication" binding:"required,max=255"`
	Dosage       string  `json:"dosage" binding:"required,max=100"`
	Frequency    string  `json:"frequency" binding:"required,max=100"`
	DurationDays int     `json:"duration_days" binding:"min=0"`
	Quantity     int     `json:"quantity" binding:"min=0"`
	Instructions *string `json:"instructions"`
}

// CreatePrescriptionRequest represents a new prescription
type CreatePrescriptionRequest struct {
	PatientID     string                    `json:"patient_id" binding:"required,uuid"`
	AppointmentID string                    `json:"appointment_id" binding:"omitempty,uuid"`
	Notes         *string                   `json:"notes"`
	Items         []PrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PrescriptionStatusRequest completes or cancels a prescription
type PrescriptionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}

// PrescriptionFilterRequest represents prescription list parameters
type PrescriptionFilterRequest struct {
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
}

// CreateLabOrderRequest represents a lab or imaging order
type CreateLabOrderRequest struct {
	PatientID     string  `json:"patient_id" binding:"required,uuid"`
	AppointmentID string  `json:"appointment_id" binding:"omitempty,uuid"`
	Type          string  `json:"type" binding:"required,lab_order_type"`
	TestName      string  `json:"test_name" binding:"required,max=255"`
	Priority      string  `json:"priority" binding:"omitempty,lab_priority"`
	ClinicalNotes *string `json:"clinical_notes"`
}

// LabOrderStatusRequest moves a lab order forward or cancels it
type LabOrderStatusRequest struct {
	Status string `json:"status" binding:"required,lab_order_status"`
}

// LabResultRequest records the result of an order
type LabResultRequest struct {
	Result string `json:"result" binding:"required"`
}

// LabOrderFilterRequest represents lab order list parameters
type LabOrderFilterRequest struct {
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,lab_order_status"`
	Type      string `form:"type" binding:"omitempty,lab_order_type"`
}

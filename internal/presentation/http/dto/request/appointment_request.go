package request

import "time"

// CreateAppointmentRequest represents an appointment booking
type CreateAppointmentRequest struct {
	PatientID string    `json:"patient_id" binding:"required,uuid"`
	DoctorID  string    `json:"doctor_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Status    string    `json:"status" binding:"omitempty,appointment_status"`
	Reason    *string   `json:"reason" binding:"omitempty,max=500"`
	Notes     *string   `json:"notes"`
}

// UpdateAppointmentRequest changes any subset of an appointment
type UpdateAppointmentRequest struct {
	PatientID *string    `json:"patient_id" binding:"omitempty,uuid"`
	DoctorID  *string    `json:"doctor_id" binding:"omitempty,uuid"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status" binding:"omitempty,appointment_status"`
	Reason    *string    `json:"reason" binding:"omitempty,max=500"`
	Notes     *string    `json:"notes"`
}

// UpdateAppointmentStatusRequest moves an appointment to a new status
type UpdateAppointmentStatusRequest struct {
	Status string  `json:"status" binding:"required,appointment_status"`
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// CancelRequest carries an optional cancellation reason
type CancelRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// AppointmentFilterRequest represents appointment list parameters
type AppointmentFilterRequest struct {
	DoctorID  string `form:"doctor_id" binding:"omitempty,uuid"`
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,appointment_status"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// AvailabilityRequest asks for a doctor's free slots on one day
type AvailabilityRequest struct {
	DoctorID string `form:"doctor_id" binding:"required,uuid"`
	Date     string `form:"date" binding:"required,date"`
	Duration int    `form:"duration" binding:"omitempty,min=5,max=480"`
}

// PortalAppointmentRequest is a patient's appointment request
type PortalAppointmentRequest struct {
	DoctorID  string    `json:"doctor_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    *string   `json:"reason" binding:"omitempty,max=500"`
}

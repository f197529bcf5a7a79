package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// PortalService serves a patient their own records. Every call resolves the
// patient linked to the calling user and never reads another patient's data.
type PortalService struct {
	patientRepo      repository.PatientRepository
	appointmentRepo  repository.AppointmentRepository
	invoiceRepo      repository.InvoiceRepository
	prescriptionRepo repository.PrescriptionRepository
	labOrderRepo     repository.LabOrderRepository
	appointments     *AppointmentService
}

// NewPortalService creates a new patient portal service
func NewPortalService(
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	invoiceRepo repository.InvoiceRepository,
	prescriptionRepo repository.PrescriptionRepository,
	labOrderRepo repository.LabOrderRepository,
	appointments *AppointmentService,
) *PortalService {
	return &PortalService{
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
		invoiceRepo:      invoiceRepo,
		prescriptionRepo: prescriptionRepo,
		labOrderRepo:     labOrderRepo,
		appointments:     appointments,
	}
}

// GetProfile returns the patient record linked to the user
func (s *PortalService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient record")
	}
	return patient, nil
}

// ListAppointments lists the patient's appointments
func (s *PortalService) ListAppointments(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Appointment], error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	params.Validate()
	appointments, total, err := s.appointmentRepo.List(ctx, repository.AppointmentFilter{PatientID: &patient.ID}, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(appointments, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// PortalAppointmentInput represents an appointment request from a patient
type PortalAppointmentInput struct {
	UserID    uuid.UUID
	DoctorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Reason    *string
}

// RequestAppointment books a SCHEDULED appointment for the patient under the
// same conflict rules as staff bookings
func (s *PortalService) RequestAppointment(ctx context.Context, input *PortalAppointmentInput) (*entity.Appointment, error) {
	patient, err := s.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return s.appointments.CreateAppointment(ctx, &CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  input.DoctorID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    enum.AppointmentStatusScheduled,
		Reason:    input.Reason,
		CreatedBy: input.UserID,
	})
}

// CancelAppointment cancels one of the patient's own upcoming appointments
func (s *PortalService) CancelAppointment(ctx context.Context, userID, appointmentID uuid.UUID, reason *string) (*entity.Appointment, error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil || appointment.PatientID != patient.ID {
		return nil, apperror.NewNotFoundError("Appointment")
	}
	if appointment.Status != enum.AppointmentStatusScheduled && appointment.Status != enum.AppointmentStatusConfirmed {
		return nil, apperror.NewBadRequestError("Only scheduled or confirmed appointments can be cancelled")
	}

	return s.appointments.CancelAppointment(ctx, appointmentID, reason)
}

// ListInvoices lists the patient's invoices
func (s *PortalService) ListInvoices(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	params.Validate()
	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{PatientID: &patient.ID}, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListPrescriptions lists the patient's prescriptions
func (s *PortalService) ListPrescriptions(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Prescription], error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	params.Validate()
	prescriptions, total, err := s.prescriptionRepo.List(ctx, repository.PrescriptionFilter{PatientID: &patient.ID}, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(prescriptions, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListLabResults lists the patient's completed lab and imaging orders
func (s *PortalService) ListLabResults(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.LabOrder], error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	params.Validate()
	completed := enum.LabOrderStatusCompleted
	orders, total, err := s.labOrderRepo.List(ctx, repository.LabOrderFilter{PatientID: &patient.ID, Status: &completed}, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(orders, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

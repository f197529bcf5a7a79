package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/sangkips/clinic-api/pkg/utils"
)

const (
	mrnAttempts      = 5
	summaryListLimit = 10
)

// PatientService handles patient registration and records
type PatientService struct {
	patientRepo      repository.PatientRepository
	appointmentRepo  repository.AppointmentRepository
	prescriptionRepo repository.PrescriptionRepository
	invoiceRepo      repository.InvoiceRepository
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	tenantRepo       repository.TenantRepository
	tx               repository.Transactor
	now              func() time.Time
}

// NewPatientService creates a new patient service
func NewPatientService(
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	invoiceRepo repository.InvoiceRepository,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tenantRepo repository.TenantRepository,
	tx repository.Transactor,
) *PatientService {
	return &PatientService{
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
		prescriptionRepo: prescriptionRepo,
		invoiceRepo:      invoiceRepo,
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		tenantRepo:       tenantRepo,
		tx:               tx,
		now:              time.Now,
	}
}

// PatientInput carries the editable patient fields
type PatientInput struct {
	FirstName             string
	LastName              string
	DateOfBirth           *time.Time
	Gender                enum.Gender
	Phone                 *string
	Email                 *string
	Address               *string
	BloodGroup            *string
	Allergies             *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// CreatePatientInput represents the create patient input
type CreatePatientInput struct {
	PatientInput
	CreatedBy uuid.UUID
}

// CreatePatient registers a patient and assigns a medical record number
func (s *PatientService) CreatePatient(ctx context.Context, input *CreatePatientInput) (*entity.Patient, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	if err := validateDateOfBirth(input.DateOfBirth, s.now()); err != nil {
		return nil, err
	}

	mrn, err := s.nextMRN(ctx)
	if err != nil {
		return nil, err
	}

	gender := input.Gender
	if gender == "" {
		gender = enum.GenderUnknown
	}

	patient := &entity.Patient{
		TenantID:              tenantID,
		MRN:                   mrn,
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		DateOfBirth:           input.DateOfBirth,
		Gender:                gender,
		Phone:                 input.Phone,
		Email:                 input.Email,
		Address:               input.Address,
		BloodGroup:            input.BloodGroup,
		Allergies:             input.Allergies,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
		CreatedBy:             input.CreatedBy,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

func (s *PatientService) nextMRN(ctx context.Context) (string, error) {
	for i := 0; i < mrnAttempts; i++ {
		mrn := utils.GenerateMRN()
		existing, err := s.patientRepo.GetByMRN(ctx, mrn)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return mrn, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique MRN after %d attempts", mrnAttempts)
}

func validateDateOfBirth(dob *time.Time, now time.Time) error {
	if dob != nil && dob.After(now) {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "date_of_birth", Message: "date of birth cannot be in the future"},
		})
	}
	return nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}
	return patient, nil
}

// ListPatients lists patients with page-based pagination
func (s *PatientService) ListPatients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Patient], error) {
	params.Validate()
	patients, total, err := s.patientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(patients, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListPatientsWithCursor lists patients using cursor-based pagination
func (s *PatientService) ListPatientsWithCursor(ctx context.Context, params *pagination.CursorParams, search string) (*pagination.CursorPaginatedResult[entity.Patient], error) {
	params.Validate()
	if _, err := params.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	patients, err := s.patientRepo.ListWithCursor(ctx, params, search)
	if err != nil {
		return nil, err
	}

	cursorPag, items := pagination.NewCursorPagination(patients, params.Limit,
		func(p entity.Patient) string { return p.ID.String() },
		func(p entity.Patient) time.Time { return p.CreatedAt },
	)
	cursorPag.HasPrev = params.Cursor != ""

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// UpdatePatientInput represents the update patient input
type UpdatePatientInput struct {
	ID uuid.UUID
	PatientInput
}

// UpdatePatient replaces the editable fields of a patient
func (s *PatientService) UpdatePatient(ctx context.Context, input *UpdatePatientInput) (*entity.Patient, error) {
	patient, err := s.GetPatient(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := validateDateOfBirth(input.DateOfBirth, s.now()); err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		patient.FirstName = input.FirstName
	}
	if input.LastName != "" {
		patient.LastName = input.LastName
	}
	if input.Gender != "" {
		patient.Gender = input.Gender
	}
	patient.DateOfBirth = input.DateOfBirth
	patient.Phone = input.Phone
	patient.Email = input.Email
	patient.Address = input.Address
	patient.BloodGroup = input.BloodGroup
	patient.Allergies = input.Allergies
	patient.EmergencyContactName = input.EmergencyContactName
	patient.EmergencyContactPhone = input.EmergencyContactPhone

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// DeletePatient soft deletes a patient
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, id); err != nil {
		return err
	}
	return s.patientRepo.Delete(ctx, id)
}

// PatientSummary is the patient chart header shown before opening a visit
type PatientSummary struct {
	Patient              *entity.Patient       `json:"patient"`
	UpcomingAppointments []entity.Appointment  `json:"upcoming_appointments"`
	ActivePrescriptions  []entity.Prescription `json:"active_prescriptions"`
	OpenInvoices         []entity.Invoice      `json:"open_invoices"`
}

// GetSummary returns the patient with upcoming appointments, active prescriptions and unpaid invoices
func (s *PatientService) GetSummary(ctx context.Context, id uuid.UUID) (*PatientSummary, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	params := &pagination.PaginationParams{Page: 1, PerPage: summaryListLimit}
	now := s.now()

	appointments, _, err := s.appointmentRepo.List(ctx, repository.AppointmentFilter{
		PatientID: &patient.ID,
		From:      &now,
	}, params)
	if err != nil {
		return nil, err
	}
	upcoming := make([]entity.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if !a.Status.IsTerminal() {
			upcoming = append(upcoming, a)
		}
	}

	active := enum.PrescriptionStatusActive
	prescriptions, _, err := s.prescriptionRepo.List(ctx, repository.PrescriptionFilter{
		PatientID: &patient.ID,
		Status:    &active,
	}, params)
	if err != nil {
		return nil, err
	}

	var open []entity.Invoice
	for _, status := range []enum.InvoiceStatus{enum.InvoiceStatusPending, enum.InvoiceStatusPartial} {
		status := status
		invoices, _, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{
			PatientID: &patient.ID,
			Status:    &status,
		}, params)
		if err != nil {
			return nil, err
		}
		open = append(open, invoices...)
	}
	if open == nil {
		open = []entity.Invoice{}
	}

	return &PatientSummary{
		Patient:              patient,
		UpcomingAppointments: upcoming,
		ActivePrescriptions:  prescriptions,
		OpenInvoices:         open,
	}, nil
}

// EnablePortalAccessInput represents the input for creating a patient portal account
type EnablePortalAccessInput struct {
	PatientID uuid.UUID
	Password  string
}

// EnablePortalAccess creates a login for the patient using the email on file
// and links it to the patient record and the current clinic.
func (s *PatientService) EnablePortalAccess(ctx context.Context, input *EnablePortalAccessInput) (*entity.Patient, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	patient, err := s.GetPatient(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.UserID != nil {
		return nil, apperror.NewConflictError("Patient already has portal access")
	}
	if patient.Email == nil || *patient.Email == "" {
		return nil, apperror.NewBadRequestError("Patient needs an email address for portal access")
	}

	email := normalizeEmail(*patient.Email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	role, err := s.roleRepo.GetByName(ctx, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("role %q is not seeded", entity.RolePatient)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Username:  email,
		Email:     email,
		Password:  hashed,
		Phone:     patient.Phone,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
		if err := s.tenantRepo.AddMember(ctx, &entity.TenantMembership{
			TenantID: tenantID,
			UserID:   user.ID,
			Role:     entity.MembershipMember,
		}); err != nil {
			return err
		}
		patient.UserID = &user.ID
		return s.patientRepo.Update(ctx, patient)
	})
	if err != nil {
		return nil, err
	}

	return patient, nil
}

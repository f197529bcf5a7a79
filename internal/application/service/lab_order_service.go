package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// LabOrderService manages laboratory and imaging orders
type LabOrderService struct {
	orderRepo   repository.LabOrderRepository
	patientRepo repository.PatientRepository
	now         func() time.Time
}

// NewLabOrderService creates a new lab order service
func NewLabOrderService(orderRepo repository.LabOrderRepository, patientRepo repository.PatientRepository) *LabOrderService {
	return &LabOrderService{
		orderRepo:   orderRepo,
		patientRepo: patientRepo,
		now:         time.Now,
	}
}

// CreateLabOrderInput represents the create lab order input
type CreateLabOrderInput struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	OrderedBy     uuid.UUID
	Type          enum.LabOrderType
	TestName      string
	Priority      enum.LabPriority
	ClinicalNotes *string
}

// CreateLabOrder places a lab or imaging order for a patient
func (s *LabOrderService) CreateLabOrder(ctx context.Context, input *CreateLabOrderInput) (*entity.LabOrder, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	if !input.Type.IsValid() {
		return nil, apperror.NewBadRequestError("Type must be LAB or IMAGING")
	}
	priority := input.Priority
	if priority == "" {
		priority = enum.LabPriorityRoutine
	}
	if !priority.IsValid() {
		return nil, apperror.NewBadRequestError("Priority must be ROUTINE, URGENT or STAT")
	}
	if strings.TrimSpace(input.TestName) == "" {
		return nil, apperror.NewBadRequestError("Test name is required")
	}

	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}

	order := &entity.LabOrder{
		TenantID:      tenantID,
		PatientID:     patient.ID,
		AppointmentID: input.AppointmentID,
		OrderedBy:     input.OrderedBy,
		Type:          input.Type,
		TestName:      input.TestName,
		Priority:      priority,
		Status:        enum.LabOrderStatusOrdered,
		ClinicalNotes: input.ClinicalNotes,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetLabOrder retrieves an order by ID
func (s *LabOrderService) GetLabOrder(ctx context.Context, id uuid.UUID) (*entity.LabOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Lab order")
	}
	return order, nil
}

// ListLabOrders lists orders matching the filter
func (s *LabOrderService) ListLabOrders(ctx context.Context, filter repository.LabOrderFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.LabOrder], error) {
	params.Validate()
	orders, total, err := s.orderRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(orders, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateStatus moves an order forward or cancels it. Completing an order
// requires a result, so COMPLETED goes through RecordResult.
func (s *LabOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.LabOrderStatus) (*entity.LabOrder, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid lab order status")
	}
	if status == enum.LabOrderStatusCompleted {
		return nil, apperror.NewBadRequestError("Record a result to complete an order")
	}

	order, err := s.GetLabOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Cannot move a lab order from %s to %s", order.Status, status))
	}

	order.Status = status
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordResultInput represents a lab or imaging result
type RecordResultInput struct {
	ID         uuid.UUID
	Result     string
	ResultedBy uuid.UUID
}

// RecordResult stores the result and completes the order
func (s *LabOrderService) RecordResult(ctx context.Context, input *RecordResultInput) (*entity.LabOrder, error) {
	if strings.TrimSpace(input.Result) == "" {
		return nil, apperror.NewBadRequestError("Result is required")
	}

	order, err := s.GetLabOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(enum.LabOrderStatusCompleted) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Cannot record a result on a %s order", order.Status))
	}

	now := s.now()
	order.Status = enum.LabOrderStatusCompleted
	order.Result = &input.Result
	order.ResultedAt = &now
	order.ResultedBy = &input.ResultedBy

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CatalogService manages the clinic's price list of billable services
type CatalogService struct {
	serviceRepo repository.ClinicServiceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(serviceRepo repository.ClinicServiceRepository) *CatalogService {
	return &CatalogService{serviceRepo: serviceRepo}
}

// ClinicServiceInput represents a billable service
type ClinicServiceInput struct {
	Code        string
	Name        string
	Description *string
	Price       decimal.Decimal
	Active      *bool
}

// CreateService adds a service to the price list
func (s *CatalogService) CreateService(ctx context.Context, input *ClinicServiceInput) (*entity.ClinicService, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	if input.Price.IsNegative() {
		return nil, apperror.NewBadRequestError("Price cannot be negative")
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if err := s.ensureCodeFree(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	svc := &entity.ClinicService{
		TenantID:    tenantID,
		Code:        code,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Active:      active,
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.serviceRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Service code already exists")
	}
	return nil
}

// GetService retrieves a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*entity.ClinicService, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return svc, nil
}

// ListServices lists the price list
func (s *CatalogService) ListServices(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) (*pagination.PaginatedResult[entity.ClinicService], error) {
	params.Validate()
	services, total, err := s.serviceRepo.List(ctx, params, search, activeOnly)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(services, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateService edits a service. Prices on existing invoices are not affected.
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, input *ClinicServiceInput) (*entity.ClinicService, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, apperror.NewBadRequestError("Price cannot be negative")
	}

	if code := strings.ToUpper(strings.TrimSpace(input.Code)); code != "" && code != svc.Code {
		if err := s.ensureCodeFree(ctx, code, svc.ID); err != nil {
			return nil, err
		}
		svc.Code = code
	}
	if input.Name != "" {
		svc.Name = input.Name
	}
	svc.Description = input.Description
	svc.Price = input.Price.Round(2)
	if input.Active != nil {
		svc.Active = *input.Active
	}

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService removes a service from the price list
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, id)
}

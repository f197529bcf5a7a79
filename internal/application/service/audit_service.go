package service

import (
	"context"

	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// AuditService records and lists audit entries
type AuditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record persists an audit entry. It satisfies the audit middleware recorder.
func (s *AuditService) Record(ctx context.Context, entry *entity.AuditLog) error {
	return s.auditRepo.Create(ctx, entry)
}

// ListAuditLogs lists entries of the current clinic
func (s *AuditService) ListAuditLogs(ctx context.Context, filter repository.AuditFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.AuditLog], error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewBadRequestError("'to' must not be before 'from'")
	}

	params.Validate()
	logs, total, err := s.auditRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(logs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

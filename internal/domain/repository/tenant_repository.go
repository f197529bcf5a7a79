package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// TenantRepository defines the interface for clinic data operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)

	// GetBySlug retrieves a clinic by its subdomain identifier
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)

	Update(ctx context.Context, tenant *entity.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetUserTenants retrieves the clinics a user belongs to
	GetUserTenants(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) ([]entity.Tenant, int64, error)

	AddMember(ctx context.Context, membership *entity.TenantMembership) error
	RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error
	GetMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error)
	IsMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
	GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error)
	UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error

	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListAll retrieves every clinic (super admin only)
	ListAll(ctx context.Context, params *pagination.PaginationParams) ([]entity.Tenant, int64, error)

	// ListWithReminders returns clinics that have SMS or email reminders enabled
	ListWithReminders(ctx context.Context) ([]entity.Tenant, error)

	Count(ctx context.Context) (int64, error)
}

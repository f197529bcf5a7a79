package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// UserService handles staff account management within a clinic
type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
	tenantRepo     repository.TenantRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
	tenantRepo repository.TenantRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		tenantRepo:     tenantRepo,
	}
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListUsers returns the members of the current clinic. Super admins without a clinic see every user.
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*pagination.PaginatedResult[entity.User], error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok && !infraRepo.SkipsTenantScope(ctx) {
		return nil, apperror.ErrTenantRequired
	}

	users, total, err := s.userRepo.List(ctx, tenantID, params, input.Search)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(users, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetUser returns a member of the current clinic with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	if err := s.ensureMember(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// UpdateUserRolesInput represents the input for updating user roles
type UpdateUserRolesInput struct {
	UserID  uuid.UUID
	RoleIDs []uint
}

// UpdateUserRoles replaces the roles assigned to a user. Unknown role ids are rejected.
// Only super admins may grant the super admin role.
func (s *UserService) UpdateUserRoles(ctx context.Context, input *UpdateUserRolesInput) (*entity.User, error) {
	if _, err := s.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	for _, roleID := range input.RoleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewBadRequestError("Unknown role")
		}
		if role.Name == entity.RoleSuperAdmin && !infraRepo.SkipsTenantScope(ctx) {
			return nil, apperror.NewForbiddenError("Only a super admin can grant the super-admin role")
		}
	}

	if err := s.userRepo.SyncRoles(ctx, input.UserID, input.RoleIDs); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, input.UserID)
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all available permissions
func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.permissionRepo.List(ctx)
}

func (s *UserService) ensureMember(ctx context.Context, userID uuid.UUID) error {
	if infraRepo.SkipsTenantScope(ctx) {
		return nil
	}
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return apperror.ErrTenantRequired
	}
	isMember, err := s.tenantRepo.IsMember(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperror.NewNotFoundError("User")
	}
	return nil
}

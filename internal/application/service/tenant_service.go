package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/sangkips/clinic-api/pkg/utils"
)

// TenantService handles clinic and membership operations
type TenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	tx         repository.Transactor
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repository.TenantRepository, userRepo repository.UserRepository, tx repository.Transactor) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, userRepo: userRepo, tx: tx}
}

// CreateTenantInput represents input for creating a clinic
type CreateTenantInput struct {
	Name     string
	Slug     string
	OwnerID  uuid.UUID
	Settings *entity.ClinicSettings
}

// CreateTenant creates a clinic and makes the creator its owner
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return nil, apperror.NewBadRequestError("Clinic slug is required")
	}

	exists, err := s.tenantRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewConflictError("Clinic slug already exists")
	}

	settings := entity.DefaultClinicSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}

	tenant := &entity.Tenant{
		Name:     input.Name,
		Slug:     slug,
		OwnerID:  input.OwnerID,
		Settings: settings,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tenantRepo.Create(ctx, tenant); err != nil {
			return err
		}
		return s.tenantRepo.AddMember(ctx, &entity.TenantMembership{
			TenantID: tenant.ID,
			UserID:   input.OwnerID,
			Role:     entity.MembershipOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a clinic by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Clinic")
	}
	return tenant, nil
}

// GetUserTenants retrieves the clinics a user belongs to
func (s *TenantService) GetUserTenants(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Tenant], error) {
	params.Validate()
	tenants, total, err := s.tenantRepo.GetUserTenants(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(tenants, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListAllTenants retrieves every clinic (for super admin use)
func (s *TenantService) ListAllTenants(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Tenant], error) {
	params.Validate()
	tenants, total, err := s.tenantRepo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(tenants, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateTenantInput represents input for updating a clinic
type UpdateTenantInput struct {
	ID   uuid.UUID
	Name string
}

// UpdateTenant renames a clinic. Settings are managed by SettingsService.
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tenant.Name = input.Name
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// InviteMemberInput represents input for adding a user to a clinic
type InviteMemberInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Email    string
	Role     string
}

// InviteMember adds an existing user, found by id or email, to a clinic
func (s *TenantService) InviteMember(ctx context.Context, input *InviteMemberInput) (*entity.TenantMembership, error) {
	role, err := membershipRole(input.Role)
	if err != nil {
		return nil, err
	}
	if role == entity.MembershipOwner {
		return nil, apperror.NewBadRequestError("A clinic has exactly one owner")
	}

	user, err := s.resolveUser(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}

	isMember, err := s.tenantRepo.IsMember(ctx, input.TenantID, user.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperror.NewConflictError("User is already a member of this clinic")
	}

	membership := &entity.TenantMembership{
		TenantID: input.TenantID,
		UserID:   user.ID,
		Role:     role,
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}
	membership.User = *user
	membership.PopulateUserDetails()
	return membership, nil
}

func (s *TenantService) resolveUser(ctx context.Context, userID uuid.UUID, email string) (*entity.User, error) {
	var (
		user *entity.User
		err  error
	)
	switch {
	case userID != uuid.Nil:
		user, err = s.userRepo.GetByID(ctx, userID)
	case email != "":
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	default:
		return nil, apperror.NewBadRequestError("user_id or email is required")
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// RemoveMember removes a user from a clinic. The owner cannot be removed.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.NewNotFoundError("Membership")
	}
	if membership.Role == entity.MembershipOwner {
		return apperror.NewBadRequestError("The clinic owner cannot be removed")
	}
	return s.tenantRepo.RemoveMember(ctx, tenantID, userID)
}

// GetTenantMembers retrieves all members of a clinic
func (s *TenantService) GetTenantMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	return s.tenantRepo.GetMembers(ctx, tenantID)
}

// UpdateMemberRole changes a member's role within a clinic
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	role, err := membershipRole(role)
	if err != nil {
		return err
	}

	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.NewNotFoundError("Membership")
	}
	if membership.Role == entity.MembershipOwner || role == entity.MembershipOwner {
		return apperror.NewBadRequestError("Ownership cannot be changed through a role update")
	}

	return s.tenantRepo.UpdateMemberRole(ctx, tenantID, userID, role)
}

// AssignUserToTenantInput represents input for assigning a user to a clinic
type AssignUserToTenantInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// AssignUserToTenant assigns a user to any clinic (for super admin use)
func (s *TenantService) AssignUserToTenant(ctx context.Context, input *AssignUserToTenantInput) error {
	if _, err := s.GetTenant(ctx, input.TenantID); err != nil {
		return err
	}

	_, err := s.InviteMember(ctx, &InviteMemberInput{
		TenantID: input.TenantID,
		UserID:   input.UserID,
		Role:     input.Role,
	})
	return err
}

func membershipRole(role string) (string, error) {
	switch role {
	case "":
		return entity.MembershipMember, nil
	case entity.MembershipOwner, entity.MembershipAdmin, entity.MembershipMember:
		return role, nil
	}
	return "", apperror.NewBadRequestError("Role must be one of owner, admin, member")
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-api/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

// TenantHandler handles clinic-related HTTP requests
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// CreateTenant creates a clinic owned by the caller
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req request.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), &service.CreateTenantInput{
		Name:    req.Name,
		Slug:    req.Slug,
		OwnerID: actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Clinic created successfully", gin.H{"tenant": tenant})
}

// GetCurrentTenant returns the active clinic
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Clinic retrieved successfully", gin.H{"tenant": tenant})
}

// ListTenants returns all clinics for super admins, or only clinics the user belongs to
func (h *TenantHandler) ListTenants(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	params := pageParams(c)
	var (
		result *pagination.PaginatedResult[entity.Tenant]
		err    error
	)
	if IsSuperAdmin(c) {
		result, err = h.tenantService.ListAllTenants(c.Request.Context(), params)
	} else {
		result, err = h.tenantService.GetUserTenants(c.Request.Context(), actor.UserID, params)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clinics retrieved successfully", result)
}

// UpdateTenant renames the active clinic
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req request.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:   middleware.GetTenantID(c),
		Name: req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Clinic updated successfully", gin.H{"tenant": tenant})
}

// ListMembers returns all members of the active clinic
func (h *TenantHandler) ListMembers(c *gin.Context) {
	members, err := h.tenantService.GetTenantMembers(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Members retrieved successfully", gin.H{"members": members})
}

// InviteMember adds an existing user to the active clinic
func (h *TenantHandler) InviteMember(c *gin.Context) {
	var req request.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	var userID uuid.UUID
	if req.UserID != "" {
		userID = uuid.MustParse(req.UserID)
	}

	membership, err := h.tenantService.InviteMember(c.Request.Context(), &service.InviteMemberInput{
		TenantID: middleware.GetTenantID(c),
		UserID:   userID,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Member added successfully", gin.H{"membership": membership})
}

// RemoveMember removes a user from the active clinic
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	userID, ok := paramID(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.tenantService.RemoveMember(c.Request.Context(), middleware.GetTenantID(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member removed successfully", nil)
}

// UpdateMemberRole updates a member's role in the active clinic
func (h *TenantHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := paramID(c, "user_id", "user")
	if !ok {
		return
	}

	var req request.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tenantService.UpdateMemberRole(c.Request.Context(), middleware.GetTenantID(c), userID, req.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member role updated successfully", nil)
}

// AssignUserToTenant assigns a user to any clinic (super admin only)
func (h *TenantHandler) AssignUserToTenant(c *gin.Context) {
	var req request.AssignUserToTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	// Default role to member if not specified
	if req.Role == "" {
		req.Role = entity.MembershipMember
	}

	err := h.tenantService.AssignUserToTenant(c.Request.Context(), &service.AssignUserToTenantInput{
		TenantID: uuid.MustParse(req.TenantID),
		UserID:   uuid.MustParse(req.UserID),
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User assigned to clinic successfully", nil)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/sangkips/clinic-api/pkg/validation"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	list, _ := roles.([]string)
	return list
}

// IsSuperAdmin checks if the user has the super-admin role
func IsSuperAdmin(c *gin.Context) bool {
	for _, role := range GetUserRoles(c) {
		if role == entity.RoleSuperAdmin {
			return true
		}
	}
	return false
}

// requireActor returns the authenticated caller or writes 401
func requireActor(c *gin.Context) (service.Actor, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return service.Actor{}, false
	}
	return service.Actor{UserID: *userID, Roles: GetUserRoles(c)}, true
}

// bindJSON decodes the body. Validation failures produce a 422 with per-field
// errors, anything else a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if fieldErrors := validation.FieldErrors(err); len(fieldErrors) > 0 {
			response.ValidationError(c, fieldErrors)
		} else {
			response.BadRequest(c, "Invalid request body")
		}
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		if fieldErrors := validation.FieldErrors(err); len(fieldErrors) > 0 {
			response.ValidationError(c, fieldErrors)
		} else {
			response.BadRequest(c, "Invalid query parameters")
		}
		return false
	}
	return true
}

// paramID parses a UUID path parameter, writing 400 on failure
func paramID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	var params pagination.PaginationParams
	_ = c.ShouldBindQuery(&params)
	params.Validate()
	return &params
}

// optionalUUID parses s when present. ok is false when s is malformed.
func optionalUUID(s string) (id *uuid.UUID, ok bool) {
	if s == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// optionalTime accepts RFC 3339 timestamps or plain dates (midnight UTC)
func optionalTime(s string) (t *time.Time, ok bool) {
	if s == "" {
		return nil, true
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return &parsed, true
	}
	if parsed, err := time.Parse("2006-01-02", s); err == nil {
		return &parsed, true
	}
	return nil, false
}

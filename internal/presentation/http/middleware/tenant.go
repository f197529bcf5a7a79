package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// TenantHeader selects the clinic by ID when the request is not made on a clinic subdomain
const TenantHeader = "X-Tenant-ID"

// ExtractTenantFromHost extracts the clinic slug from a subdomain,
// e.g. "riverside.clinic.example" -> "riverside"
func ExtractTenantFromHost(host string) (string, error) {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", errors.New("invalid subdomain")
	}
	return parts[0], nil
}

// TenantMiddleware resolves the clinic from the X-Tenant-ID header or the subdomain,
// checks that the caller belongs to it and scopes the request context to it.
// Super admins skip the membership check; without a clinic their queries run unscoped.
func TenantMiddleware(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		superAdmin := hasAny(stringsFromContext(c, "user_roles"), entity.RoleSuperAdmin)

		var tenant *entity.Tenant
		if header := strings.TrimSpace(c.GetHeader(TenantHeader)); header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				response.BadRequest(c, "Invalid "+TenantHeader+" header")
				c.Abort()
				return
			}
			if tenant, err = tenantRepo.GetByID(ctx, id); err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
		} else if slug, err := ExtractTenantFromHost(c.Request.Host); err == nil {
			if tenant, err = tenantRepo.GetBySlug(ctx, slug); err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
		} else {
			c.Set("tenant_id", uuid.Nil)
			if superAdmin {
				c.Request = c.Request.WithContext(infraRepo.WithSkipTenantScope(ctx, true))
			}
			c.Next()
			return
		}

		if tenant == nil {
			response.NotFound(c, "Clinic not found")
			c.Abort()
			return
		}

		if !superAdmin {
			userID, ok := c.Get("user_id")
			id, _ := userID.(uuid.UUID)
			if !ok || id == uuid.Nil {
				response.Unauthorized(c, "User not authenticated")
				c.Abort()
				return
			}
			isMember, err := tenantRepo.IsMember(ctx, tenant.ID, id)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if !isMember {
				response.Forbidden(c, "Access denied to this clinic")
				c.Abort()
				return
			}
		}

		c.Set("tenant_id", tenant.ID)
		c.Set("tenant", tenant)
		c.Request = c.Request.WithContext(infraRepo.WithTenant(ctx, tenant.ID))

		c.Next()
	}
}

// RequireTenant ensures a valid clinic context exists
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTenantID(c) == uuid.Nil {
			response.BadRequest(c, "Clinic context required. Send the "+TenantHeader+" header or use the clinic subdomain")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTenantID retrieves the clinic ID from the gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

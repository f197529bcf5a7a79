package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/domain/entity"
)

const apiPrefix = "/api/v1/"

// AuditRecorder persists audit entries produced by the Audit middleware
type AuditRecorder interface {
	Record(ctx context.Context, entry *entity.AuditLog) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder
type AuditRecorderFunc func(ctx context.Context, entry *entity.AuditLog) error

func (f AuditRecorderFunc) Record(ctx context.Context, entry *entity.AuditLog) error {
	return f(ctx, entry)
}

// Audit records every mutating request after it has been handled. A nil recorder
// leaves only the structured log line. Recording failures never change the response.
func Audit(logger zerolog.Logger, recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		if !isMutating(method) {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		entry := &entity.AuditLog{
			Action:     methodToAction(method),
			Resource:   resourceFromRoute(route),
			Method:     method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			RequestID:  RequestID(c),
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		if v, ok := c.Get("user_id"); ok {
			if userID, ok := v.(uuid.UUID); ok && userID != uuid.Nil {
				entry.UserID = &userID
			}
		}
		if tenantID := GetTenantID(c); tenantID != uuid.Nil {
			entry.TenantID = &tenantID
		}

		if recorder != nil {
			if err := recorder.Record(c.Request.Context(), entry); err != nil {
				logger.Error().Err(err).
					Str("request_id", entry.RequestID).
					Msg("failed to record audit entry")
			}
		}

		evt := logger.Info().
			Str("type", "audit").
			Str("request_id", entry.RequestID).
			Str("action", entry.Action).
			Str("resource", entry.Resource).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status", entry.StatusCode).
			Str("remote_ip", entry.IPAddress)
		if entry.ResourceID != nil {
			evt = evt.Str("resource_id", *entry.ResourceID)
		}
		if entry.UserID != nil {
			evt = evt.Str("user_id", entry.UserID.String())
		}
		if entry.TenantID != nil {
			evt = evt.Str("tenant_id", entry.TenantID.String())
		}
		evt.Msg("audit")
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// resourceFromRoute returns the first segment after the API prefix:
// /api/v1/invoices/:id/payments -> invoices
func resourceFromRoute(route string) string {
	if !strings.HasPrefix(route, apiPrefix) {
		return "unknown"
	}
	segments := strings.Split(strings.TrimPrefix(route, apiPrefix), "/")
	if segments[0] == "" || strings.HasPrefix(segments[0], ":") {
		return "unknown"
	}
	return segments[0]
}

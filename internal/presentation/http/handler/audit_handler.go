package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// AuditHandler exposes the audit trail
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs lists audit entries, newest first
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var req request.AuditFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	filter := repository.AuditFilter{Resource: req.Resource}
	var ok bool
	if filter.UserID, ok = optionalUUID(req.UserID); !ok {
		response.BadRequest(c, "Invalid user ID")
		return
	}
	if filter.From, ok = optionalTime(req.From); !ok {
		response.BadRequest(c, "Invalid from date")
		return
	}
	if filter.To, ok = optionalTime(req.To); !ok {
		response.BadRequest(c, "Invalid to date")
		return
	}

	result, err := h.auditService.ListAuditLogs(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Audit logs retrieved successfully", result)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles the clinic's billable services
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func toServiceInput(req *request.ClinicServiceRequest) *service.ClinicServiceInput {
	return &service.ClinicServiceInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	}
}

// CreateService adds a service to the price list
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req request.ClinicServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), toServiceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Service created successfully", svc)
}

// ListServices lists the price list. active=true hides retired services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	result, err := h.catalogService.ListServices(c.Request.Context(), pageParams(c), c.Query("search"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Services retrieved successfully", result)
}

// GetService handles getting a single service
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := paramID(c, "id", "service")
	if !ok {
		return
	}

	svc, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service retrieved successfully", svc)
}

// UpdateService edits a service
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := paramID(c, "id", "service")
	if !ok {
		return
	}

	var req request.ClinicServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, toServiceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service updated successfully", svc)
}

// DeleteService removes a service. Past invoice lines keep their copied description and price.
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := paramID(c, "id", "service")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service deleted successfully", nil)
}

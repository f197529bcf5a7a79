package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles clinic settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings retrieves the clinic settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings replaces the clinic settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	hours := make([]entity.WorkingHours, len(req.WorkingHours))
	for i, wh := range req.WorkingHours {
		hours[i] = entity.WorkingHours{
			Weekday: time.Weekday(wh.Weekday),
			Open:    wh.Open,
			Close:   wh.Close,
		}
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &entity.ClinicSettings{
		Timezone:                  req.Timezone,
		Currency:                  req.Currency,
		Locale:                    req.Locale,
		Phone:                     req.Phone,
		Email:                     req.Email,
		Address:                   req.Address,
		DefaultAppointmentMinutes: req.DefaultAppointmentMinutes,
		WorkingHours:              hours,
		ReminderLeadHours:         req.ReminderLeadHours,
		EmailReminders:            req.EmailReminders,
		SMSReminders:              req.SMSReminders,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}

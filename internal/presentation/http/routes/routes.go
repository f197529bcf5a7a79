package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/config"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/handler"
	"github.com/sangkips/clinic-api/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Tenant       *handler.TenantHandler
	User         *handler.UserHandler
	Patient      *handler.PatientHandler
	Appointment  *handler.AppointmentHandler
	Note         *handler.MedicalNoteHandler
	Prescription *handler.PrescriptionHandler
	LabOrder     *handler.LabOrderHandler
	Catalog      *handler.CatalogHandler
	Invoice      *handler.InvoiceHandler
	Dashboard    *handler.DashboardHandler
	Settings     *handler.SettingsHandler
	Audit        *handler.AuditHandler
	Portal       *handler.PortalHandler
}

// DashboardInvalidator drops cached dashboard figures after writes that change them
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context) error
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          zerolog.Logger
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	AuditRecorder   middleware.AuditRecorder
	RateLimiter     *middleware.TenantRateLimiter
	Dashboard       DashboardInvalidator
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes: token, then clinic resolution, then the per-clinic limit
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.TenantMiddleware(deps.TenantRepo))
		protected.Use(deps.RateLimiter.Middleware())
		protected.Use(middleware.Audit(deps.Logger, deps.AuditRecorder))

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Tenants
	registerTenantRoutes(protected, h)

	// Super Admin routes
	registerAdminRoutes(protected, h)

	// Patient portal
	registerPortalRoutes(protected, h, deps)

	// Everything below works inside one clinic
	clinic := protected.Group("")
	clinic.Use(middleware.RequireTenant())

	registerSettingsRoutes(clinic, h)
	registerDashboardRoutes(clinic, h)
	registerPatientRoutes(clinic, h, deps)
	registerAppointmentRoutes(clinic, h, deps)
	registerNoteRoutes(clinic, h)
	registerPrescriptionRoutes(clinic, h)
	registerLabOrderRoutes(clinic, h)
	registerServiceRoutes(clinic, h)
	registerInvoiceRoutes(clinic, h, deps)
	registerAuditRoutes(clinic, h)
	registerUserRoutes(clinic, h)
}

func registerTenantRoutes(protected *gin.RouterGroup, h *Handlers) {
	tenants := protected.Group("/tenants")
	{
		tenants.GET("", h.Tenant.ListTenants)
		tenants.POST("", h.Tenant.CreateTenant)
	}

	current := tenants.Group("/current")
	current.Use(middleware.RequireTenant())
	{
		current.GET("", h.Tenant.GetCurrentTenant)
		current.GET("/members", h.Tenant.ListMembers)

		manage := current.Group("")
		manage.Use(middleware.RequirePermission(entity.PermManageUsers))
		manage.PUT("", h.Tenant.UpdateTenant)
		manage.POST("/members", h.Tenant.InviteMember)
		manage.PUT("/members/:user_id", h.Tenant.UpdateMemberRole)
		manage.DELETE("/members/:user_id", h.Tenant.RemoveMember)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(entity.RoleSuperAdmin))
	{
		admin.POST("/tenants/assign-user", h.Tenant.AssignUserToTenant)
	}
}

func registerPortalRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	portal := protected.Group("/portal")
	portal.Use(middleware.RequireTenant(), middleware.RequirePermission(entity.PermAccessPortal))
	{
		portal.GET("/profile", h.Portal.GetProfile)
		portal.GET("/appointments", h.Portal.ListAppointments)
		portal.POST("/appointments", idempotent(deps), invalidatesDashboard(deps), h.Portal.RequestAppointment)
		portal.POST("/appointments/:id/cancel", invalidatesDashboard(deps), h.Portal.CancelAppointment)
		portal.GET("/invoices", h.Portal.ListInvoices)
		portal.GET("/prescriptions", h.Portal.ListPrescriptions)
		portal.GET("/lab-results", h.Portal.ListLabResults)
	}
}

func registerSettingsRoutes(clinic *gin.RouterGroup, h *Handlers) {
	settings := clinic.Group("/settings")
	settings.Use(middleware.RequirePermission(entity.PermManageSettings))
	{
		settings.GET("", h.Settings.GetSettings)
		settings.PUT("", h.Settings.UpdateSettings)
	}
}

func registerDashboardRoutes(clinic *gin.RouterGroup, h *Handlers) {
	clinic.GET("/dashboard", middleware.RequirePermission(entity.PermViewDashboard), h.Dashboard.GetStats)
}

func registerPatientRoutes(clinic *gin.RouterGroup, h *Handlers, deps *Deps) {
	patients := clinic.Group("/patients")
	patients.Use(middleware.RequirePermission(entity.PermManagePatients))
	{
		patients.GET("", h.Patient.ListPatients)
		patients.POST("", idempotent(deps), invalidatesDashboard(deps), h.Patient.CreatePatient)
		patients.GET("/:id", h.Patient.GetPatient)
		patients.PUT("/:id", h.Patient.UpdatePatient)
		patients.DELETE("/:id", invalidatesDashboard(deps), h.Patient.DeletePatient)
		patients.GET("/:id/summary", h.Patient.GetSummary)
		patients.POST("/:id/portal-access", h.Patient.EnablePortalAccess)
	}
}

func registerAppointmentRoutes(clinic *gin.RouterGroup, h *Handlers, deps *Deps) {
	appointments := clinic.Group("/appointments")
	appointments.Use(middleware.RequirePermission(entity.PermManageAppointments))
	appointments.Use(invalidatesDashboard(deps))
	{
		appointments.GET("", h.Appointment.ListAppointments)
		appointments.POST("", idempotent(deps), h.Appointment.CreateAppointment)
		appointments.GET("/availability", h.Appointment.GetAvailability)
		appointments.GET("/:id", h.Appointment.GetAppointment)
		appointments.PUT("/:id", h.Appointment.UpdateAppointment)
		appointments.PATCH("/:id/status", h.Appointment.UpdateStatus)
		appointments.POST("/:id/cancel", h.Appointment.CancelAppointment)
		appointments.DELETE("/:id", h.Appointment.DeleteAppointment)
	}
}

func registerNoteRoutes(clinic *gin.RouterGroup, h *Handlers) {
	records := clinic.Group("")
	records.Use(middleware.RequirePermission(entity.PermManageRecords))
	{
		records.GET("/patients/:id/notes", h.Note.ListPatientNotes)
		records.POST("/patients/:id/notes", h.Note.CreateNote)
		records.GET("/notes/:id", h.Note.GetNote)
		records.PUT("/notes/:id", h.Note.UpdateNote)
		records.DELETE("/notes/:id", h.Note.DeleteNote)
	}
}

func registerPrescriptionRoutes(clinic *gin.RouterGroup, h *Handlers) {
	prescriptions := clinic.Group("/prescriptions")
	prescriptions.Use(middleware.RequirePermission(entity.PermManagePrescriptions))
	{
		prescriptions.GET("", h.Prescription.ListPrescriptions)
		prescriptions.POST("", h.Prescription.CreatePrescription)
		prescriptions.GET("/:id", h.Prescription.GetPrescription)
		prescriptions.PATCH("/:id/status", h.Prescription.UpdateStatus)
		prescriptions.DELETE("/:id", h.Prescription.DeletePrescription)
	}
}

func registerLabOrderRoutes(clinic *gin.RouterGroup, h *Handlers) {
	orders := clinic.Group("/lab-orders")
	orders.Use(middleware.RequirePermission(entity.PermManageLabOrders))
	{
		orders.GET("", h.LabOrder.ListLabOrders)
		orders.POST("", h.LabOrder.CreateLabOrder)
		orders.GET("/:id", h.LabOrder.GetLabOrder)
		orders.PATCH("/:id/status", h.LabOrder.UpdateStatus)
		orders.POST("/:id/result", h.LabOrder.RecordResult)
	}
}

func registerServiceRoutes(clinic *gin.RouterGroup, h *Handlers) {
	services := clinic.Group("/services")
	services.Use(middleware.RequirePermission(entity.PermManageServices))
	{
		services.GET("", h.Catalog.ListServices)
		services.POST("", h.Catalog.CreateService)
		services.GET("/:id", h.Catalog.GetService)
		services.PUT("/:id", h.Catalog.UpdateService)
		services.DELETE("/:id", h.Catalog.DeleteService)
	}
}

func registerInvoiceRoutes(clinic *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := clinic.Group("/invoices")
	invoices.Use(middleware.RequirePermission(entity.PermManageBilling))
	invoices.Use(invalidatesDashboard(deps))
	{
		invoices.GET("", h.Invoice.ListInvoices)
		// Invoice creation requires a key so a retried submit cannot bill twice
		invoices.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Invoice.CreateInvoice)
		invoices.GET("/:id", h.Invoice.GetInvoice)
		invoices.PUT("/:id", h.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", h.Invoice.DeleteInvoice)
		invoices.POST("/:id/cancel", h.Invoice.CancelInvoice)
		invoices.GET("/:id/eligibility", h.Invoice.GetEligibility)
		invoices.GET("/:id/payments", h.Invoice.ListPayments)
		invoices.POST("/:id/payments", idempotent(deps), h.Invoice.AddPayment)
	}
}

func registerAuditRoutes(clinic *gin.RouterGroup, h *Handlers) {
	clinic.GET("/audit-logs", middleware.RequirePermission(entity.PermViewAuditLogs), h.Audit.ListAuditLogs)
}

func registerUserRoutes(clinic *gin.RouterGroup, h *Handlers) {
	users := clinic.Group("/users")
	users.Use(middleware.RequirePermission(entity.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}

	clinic.GET("/roles", middleware.RequirePermission(entity.PermManageUsers), h.User.ListRoles)
	clinic.GET("/permissions", middleware.RequirePermission(entity.PermManageUsers), h.User.ListPermissions)
}

func idempotent(deps *Deps) gin.HandlerFunc {
	return middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	})
}

// invalidatesDashboard drops the clinic's cached dashboard after a successful write
func invalidatesDashboard(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if deps.Dashboard == nil || c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		if err := deps.Dashboard.InvalidateDashboard(c.Request.Context()); err != nil {
			deps.Logger.Warn().Err(err).Str("request_id", middleware.RequestID(c)).Msg("failed to invalidate dashboard cache")
		}
	}
}

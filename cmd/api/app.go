package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/application/service"
	"github.com/sangkips/clinic-api/internal/config"
	"github.com/sangkips/clinic-api/internal/infrastructure/cache"
	"github.com/sangkips/clinic-api/internal/infrastructure/database"
	"github.com/sangkips/clinic-api/internal/infrastructure/notification"
	"github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/handler"
	"github.com/sangkips/clinic-api/internal/presentation/http/middleware"
	"github.com/sangkips/clinic-api/internal/presentation/http/routes"
	"github.com/sangkips/clinic-api/pkg/email"
	"github.com/sangkips/clinic-api/pkg/utils"
	"github.com/sangkips/clinic-api/pkg/validation"
	"gorm.io/gorm"
)

// app is the wired object graph shared by the serve and reminders commands
type app struct {
	db          *gorm.DB
	router      *gin.Engine
	rateLimiter *middleware.TenantRateLimiter
	reminders   *service.ReminderService
	closers     []func() error
	log         zerolog.Logger
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	if err := validation.RegisterWithGin(); err != nil {
		return nil, err
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a := &app{db: db, log: log}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	// Dashboard cache: Redis when configured, otherwise every request recomputes
	var dashboardCache cache.Cache = cache.NoopCache{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, dashboard caching disabled")
			_ = redisCache.Close()
		} else {
			dashboardCache = redisCache
			a.closers = append(a.closers, redisCache.Close)
		}
	}

	// Reminder channels
	var smsSender notification.SMSSender = notification.DisabledSMSSender{}
	if cfg.SMS.Enabled && cfg.SMS.AccountSID != "" {
		smsSender = notification.NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	}
	emailConfig := email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	}
	var emailSender notification.EmailSender = notification.DisabledEmailSender{}
	if emailConfig.Enabled() {
		emailSender = notification.NewSMTPEmailSender(email.NewEmailService(emailConfig))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.RefreshExpiryHours)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	noteRepo := repository.NewMedicalNoteRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	labOrderRepo := repository.NewLabOrderRepository(db)
	serviceRepo := repository.NewClinicServiceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reminderRepo := repository.NewReminderLogRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	tenantService := service.NewTenantService(tenantRepo, userRepo, tx)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo, tenantRepo)
	patientService := service.NewPatientService(patientRepo, appointmentRepo, prescriptionRepo, invoiceRepo, userRepo, roleRepo, tenantRepo, tx)
	appointmentService := service.NewAppointmentService(appointmentRepo, patientRepo, userRepo, tenantRepo, tx)
	noteService := service.NewMedicalNoteService(noteRepo, patientRepo, appointmentRepo)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, patientRepo)
	labOrderService := service.NewLabOrderService(labOrderRepo, patientRepo)
	catalogService := service.NewCatalogService(serviceRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, paymentRepo, serviceRepo, patientRepo, appointmentRepo, tx)
	dashboardService := service.NewDashboardService(patientRepo, appointmentRepo, invoiceRepo, paymentRepo, tenantRepo, dashboardCache, cfg.Redis.DashboardTTL, log)
	settingsService := service.NewSettingsService(tenantRepo)
	auditService := service.NewAuditService(auditRepo)
	portalService := service.NewPortalService(patientRepo, appointmentRepo, invoiceRepo, prescriptionRepo, labOrderRepo, appointmentService)
	a.reminders = service.NewReminderService(tenantRepo, appointmentRepo, reminderRepo, smsSender, emailSender, cfg.Reminder.LeadHours, log)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Tenant:       handler.NewTenantHandler(tenantService),
		User:         handler.NewUserHandler(userService),
		Patient:      handler.NewPatientHandler(patientService),
		Appointment:  handler.NewAppointmentHandler(appointmentService),
		Note:         handler.NewMedicalNoteHandler(noteService),
		Prescription: handler.NewPrescriptionHandler(prescriptionService),
		LabOrder:     handler.NewLabOrderHandler(labOrderService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Invoice:      handler.NewInvoiceHandler(invoiceService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Settings:     handler.NewSettingsHandler(settingsService),
		Audit:        handler.NewAuditHandler(auditService),
		Portal:       handler.NewPortalHandler(portalService),
	}

	a.rateLimiter = middleware.NewTenantRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))

	// Setup routes
	a.router = routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
		AuditRecorder:   auditService,
		RateLimiter:     a.rateLimiter,
		Dashboard:       dashboardService,
	})

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("error during shutdown")
		}
	}
}

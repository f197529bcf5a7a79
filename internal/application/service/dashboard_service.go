package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const recentAppointmentsLimit = 5

// DashboardService provides the clinic's front-desk statistics
type DashboardService struct {
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	invoiceRepo     repository.InvoiceRepository
	paymentRepo     repository.PaymentRepository
	tenantRepo      repository.TenantRepository
	cache           cache.Cache
	ttl             time.Duration
	log             zerolog.Logger
	now             func() time.Time
}

// NewDashboardService creates a new dashboard service. Stats are cached per clinic for ttl.
func NewDashboardService(
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	tenantRepo repository.TenantRepository,
	c cache.Cache,
	ttl time.Duration,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		tenantRepo:      tenantRepo,
		cache:           c,
		ttl:             ttl,
		log:             log,
		now:             time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalPatients      int64                            `json:"total_patients"`
	TodayAppointments  int64                            `json:"today_appointments"`
	AppointmentsToday  map[enum.AppointmentStatus]int64 `json:"appointments_by_status"`
	PendingInvoices    int64                            `json:"pending_invoices"`
	PartialInvoices    int64                            `json:"partial_invoices"`
	OutstandingBalance decimal.Decimal                  `json:"outstanding_balance"`
	MonthlyRevenue     decimal.Decimal                  `json:"monthly_revenue"`
	RecentAppointments []entity.Appointment             `json:"recent_appointments"`
	GeneratedAt        time.Time                        `json:"generated_at"`
}

func dashboardCacheKey(tenantKey string) string {
	return "dashboard:" + tenantKey
}

// GetDashboardStats returns the current clinic's statistics, served from cache when fresh
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	key := dashboardCacheKey(tenantID.String())

	var cached DashboardStats
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
	}
	if hit {
		return &cached, nil
	}

	stats, err := s.compute(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, stats, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
	return stats, nil
}

// InvalidateDashboard drops the cached statistics of the current clinic
func (s *DashboardService) InvalidateDashboard(ctx context.Context) error {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return apperror.ErrTenantRequired
	}
	return s.cache.Delete(ctx, dashboardCacheKey(tenantID.String()))
}

func (s *DashboardService) compute(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	loc := time.UTC
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		loc = tenant.Settings.Location()
	}

	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	stats := &DashboardStats{GeneratedAt: s.now()}

	if stats.TotalPatients, err = s.patientRepo.Count(ctx); err != nil {
		return nil, err
	}

	if stats.AppointmentsToday, err = s.appointmentRepo.CountByStatusBetween(ctx, dayStart, dayEnd); err != nil {
		return nil, err
	}
	for _, n := range stats.AppointmentsToday {
		stats.TodayAppointments += n
	}

	invoiceCounts, err := s.invoiceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.PendingInvoices = invoiceCounts[enum.InvoiceStatusPending]
	stats.PartialInvoices = invoiceCounts[enum.InvoiceStatusPartial]

	if stats.OutstandingBalance, err = s.invoiceRepo.OutstandingBalance(ctx); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.paymentRepo.SumBetween(ctx, monthStart, monthEnd); err != nil {
		return nil, err
	}

	params := &pagination.PaginationParams{Page: 1, PerPage: recentAppointmentsLimit}
	if stats.RecentAppointments, _, err = s.appointmentRepo.List(ctx, repository.AppointmentFilter{
		From: &dayStart,
		To:   &dayEnd,
	}, params); err != nil {
		return nil, err
	}
	if stats.RecentAppointments == nil {
		stats.RecentAppointments = []entity.Appointment{}
	}

	return stats, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	domainRepo "github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type clinicServiceRepository struct {
	db *gorm.DB
}

// NewClinicServiceRepository creates a new clinic service repository
func NewClinicServiceRepository(db *gorm.DB) domainRepo.ClinicServiceRepository {
	return &clinicServiceRepository{db: db}
}

func (r *clinicServiceRepository) Create(ctx context.Context, svc *entity.ClinicService) error {
	return conn(ctx, r.db).Create(svc).Error
}

func (r *clinicServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ClinicService, error) {
	var svc entity.ClinicService
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&svc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &svc, err
}

func (r *clinicServiceRepository) GetByCode(ctx context.Context, code string) (*entity.ClinicService, error) {
	var svc entity.ClinicService
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&svc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &svc, err
}

func (r *clinicServiceRepository) Update(ctx context.Context, svc *entity.ClinicService) error {
	return conn(ctx, r.db).Save(svc).Error
}

func (r *clinicServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(TenantScope(ctx)).Delete(&entity.ClinicService{}, "id = ?", id).Error
}

func (r *clinicServiceRepository) List(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) ([]entity.ClinicService, int64, error) {
	var services []entity.ClinicService
	var total int64

	query := conn(ctx, r.db).Model(&entity.ClinicService{}).Scopes(TenantScope(ctx))
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&services).Error

	return services, total, err
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit("Payments", "Patient").Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Preload("Patient").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit("Items", "Payments", "Patient").Save(invoice).Error
}

func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []entity.InvoiceItem) error {
	db := conn(ctx, r.db)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return db.Create(&items).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Scopes(TenantScope(ctx)).Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) List(ctx context.Context, filter domainRepo.InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(TenantScope(ctx))
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Patient").
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

// LastInvoiceNumber includes soft-deleted invoices so numbers are never reissued
func (r *invoiceRepository) LastInvoiceNumber(ctx context.Context) (string, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).Unscoped().Scopes(TenantScope(ctx)).
		Select("invoice_number").
		Order("created_at DESC, invoice_number DESC").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return invoice.InvoiceNumber, err
}

func (r *invoiceRepository) LockInvoiceSequence(ctx context.Context) error {
	key := "invoice:"
	if tenantID, ok := GetTenantID(ctx); ok {
		key += tenantID.String()
	}
	return advisoryLock(ctx, r.db, key)
}

func (r *invoiceRepository) LockInvoice(ctx context.Context, id uuid.UUID) error {
	return advisoryLock(ctx, r.db, "invoice-payments:"+id.String())
}

func (r *invoiceRepository) CountByStatus(ctx context.Context) (map[enum.InvoiceStatus]int64, error) {
	var rows []statusCount
	err := conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(TenantScope(ctx)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enum.InvoiceStatus]int64, len(rows))
	for _, row := range rows {
		counts[enum.InvoiceStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *invoiceRepository) OutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(TenantScope(ctx)).
		Select("COALESCE(SUM(balance), 0)").
		Where("status IN ?", []enum.InvoiceStatus{enum.InvoiceStatusPending, enum.InvoiceStatusPartial}).
		Row().Scan(&total)
	return total, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return conn(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Payment{}).Scopes(TenantScope(ctx)).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Payment{}).Scopes(TenantScope(ctx)).
		Select("COALESCE(SUM(amount), 0)").
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Row().Scan(&total)
	return total, err
}

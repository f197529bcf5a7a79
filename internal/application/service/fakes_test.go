package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/email"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

var testTenantID = uuid.MustParse("7d1c2f5e-4b7a-4c1e-9d6a-0a4b9b1e2c33")

func errorCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

type passthroughTx struct{ calls int }

func (t *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// --- patients ---

type mockPatientRepo struct {
	patients map[uuid.UUID]*entity.Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*entity.Patient)}
}

func (m *mockPatientRepo) add(p *entity.Patient) *entity.Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.TenantID = testTenantID
	m.patients[p.ID] = p
	return p
}

func (m *mockPatientRepo) Create(_ context.Context, p *entity.Patient) error {
	m.add(p)
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByMRN(_ context.Context, mrn string) (*entity.Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.Patient, error) {
	for _, p := range m.patients {
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *entity.Patient) error {
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Patient, int64, error) {
	var out []entity.Patient
	for _, p := range m.patients {
		if search == "" || strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(search)) {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockPatientRepo) ListWithCursor(_ context.Context, _ *pagination.CursorParams, _ string) ([]entity.Patient, error) {
	var out []entity.Patient
	for _, p := range m.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPatientRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.patients)), nil
}

// --- appointments ---

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*entity.Appointment
	locks        []uuid.UUID
	listCalls    int
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*entity.Appointment)}
}

func (m *mockAppointmentRepo) add(a *entity.Appointment) *entity.Appointment {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.TenantID = testTenantID
	m.appointments[a.ID] = a
	return a
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	m.add(a)
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *entity.Appointment) error {
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockAppointmentRepo) List(_ context.Context, f repository.AppointmentFilter, _ *pagination.PaginationParams) ([]entity.Appointment, int64, error) {
	m.listCalls++
	var out []entity.Appointment
	for _, a := range m.appointments {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.From != nil && a.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !a.StartTime.Before(*f.To) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, int64(len(out)), nil
}

func (m *mockAppointmentRepo) ListForDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.StartTime.Before(to) && a.EndTime.After(from) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) LockDoctorSchedule(_ context.Context, doctorID uuid.UUID) error {
	m.locks = append(m.locks, doctorID)
	return nil
}

func (m *mockAppointmentRepo) ListStartingBetween(_ context.Context, tenantID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range m.appointments {
		if a.TenantID != tenantID || a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		if a.Status != enum.AppointmentStatusScheduled && a.Status != enum.AppointmentStatusConfirmed {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAppointmentRepo) CountByStatusBetween(_ context.Context, from, to time.Time) (map[enum.AppointmentStatus]int64, error) {
	counts := make(map[enum.AppointmentStatus]int64)
	for _, a := range m.appointments {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// --- users, roles ---

type mockUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (m *mockUserRepo) add(u *entity.User) *entity.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, u *entity.User) error {
	m.add(u)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *entity.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ uuid.UUID, _ *pagination.PaginationParams, _ string) ([]entity.User, int64, error) {
	var out []entity.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) AssignRole(_ context.Context, userID uuid.UUID, roleID uint) error {
	if u, ok := m.users[userID]; ok {
		u.Roles = append(u.Roles, entity.Role{ID: roleID, Name: roleNameByID[roleID]})
	}
	return nil
}

func (m *mockUserRepo) RemoveRole(_ context.Context, userID uuid.UUID, roleID uint) error {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r.ID != roleID {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	return nil
}

func (m *mockUserRepo) SyncRoles(_ context.Context, userID uuid.UUID, roleIDs []uint) error {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	u.Roles = nil
	for _, id := range roleIDs {
		u.Roles = append(u.Roles, entity.Role{ID: id, Name: roleNameByID[id]})
	}
	return nil
}

var roleNameByID = map[uint]string{
	1: entity.RoleSuperAdmin,
	2: entity.RoleAdmin,
	3: entity.RoleDoctor,
	4: entity.RoleNurse,
	5: entity.RoleReceptionist,
	6: entity.RolePatient,
}

func roleNamed(name string) entity.Role {
	for id, n := range roleNameByID {
		if n == name {
			return entity.Role{ID: id, Name: n}
		}
	}
	return entity.Role{Name: name}
}

type mockRoleRepo struct{}

func (mockRoleRepo) Create(context.Context, *entity.Role) error { return nil }

func (mockRoleRepo) GetByID(_ context.Context, id uint) (*entity.Role, error) {
	name, ok := roleNameByID[id]
	if !ok {
		return nil, nil
	}
	return &entity.Role{ID: id, Name: name}, nil
}

func (mockRoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	for id, n := range roleNameByID {
		if n == name {
			return &entity.Role{ID: id, Name: n}, nil
		}
	}
	return nil, nil
}

func (mockRoleRepo) List(context.Context) ([]entity.Role, error) {
	var out []entity.Role
	for id, n := range roleNameByID {
		out = append(out, entity.Role{ID: id, Name: n})
	}
	return out, nil
}

func (r mockRoleRepo) GetWithPermissions(ctx context.Context, id uint) (*entity.Role, error) {
	return r.GetByID(ctx, id)
}

func (mockRoleRepo) SyncPermissions(context.Context, uint, []uint) error { return nil }

// --- tenants ---

type mockTenantRepo struct {
	tenants     map[uuid.UUID]*entity.Tenant
	memberships map[uuid.UUID]map[uuid.UUID]*entity.TenantMembership
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{
		tenants:     make(map[uuid.UUID]*entity.Tenant),
		memberships: make(map[uuid.UUID]map[uuid.UUID]*entity.TenantMembership),
	}
}

func (m *mockTenantRepo) addClinic(t *entity.Tenant) *entity.Tenant {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tenants[t.ID] = t
	return t
}

func (m *mockTenantRepo) join(tenantID, userID uuid.UUID, role string) {
	if m.memberships[tenantID] == nil {
		m.memberships[tenantID] = make(map[uuid.UUID]*entity.TenantMembership)
	}
	m.memberships[tenantID][userID] = &entity.TenantMembership{TenantID: tenantID, UserID: userID, Role: role}
}

func (m *mockTenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	m.addClinic(t)
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *mockTenantRepo) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockTenantRepo) Update(_ context.Context, t *entity.Tenant) error {
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *mockTenantRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tenants, id)
	return nil
}

func (m *mockTenantRepo) GetUserTenants(_ context.Context, userID uuid.UUID, _ *pagination.PaginationParams) ([]entity.Tenant, int64, error) {
	var out []entity.Tenant
	for tenantID, members := range m.memberships {
		if _, ok := members[userID]; ok {
			out = append(out, *m.tenants[tenantID])
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockTenantRepo) AddMember(_ context.Context, tm *entity.TenantMembership) error {
	m.join(tm.TenantID, tm.UserID, tm.Role)
	return nil
}

func (m *mockTenantRepo) RemoveMember(_ context.Context, tenantID, userID uuid.UUID) error {
	delete(m.memberships[tenantID], userID)
	return nil
}

func (m *mockTenantRepo) GetMembers(_ context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	var out []entity.TenantMembership
	for _, tm := range m.memberships[tenantID] {
		out = append(out, *tm)
	}
	return out, nil
}

func (m *mockTenantRepo) IsMember(_ context.Context, tenantID, userID uuid.UUID) (bool, error) {
	_, ok := m.memberships[tenantID][userID]
	return ok, nil
}

func (m *mockTenantRepo) GetMembership(_ context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	tm, ok := m.memberships[tenantID][userID]
	if !ok {
		return nil, nil
	}
	cp := *tm
	return &cp, nil
}

func (m *mockTenantRepo) UpdateMemberRole(_ context.Context, tenantID, userID uuid.UUID, role string) error {
	if tm, ok := m.memberships[tenantID][userID]; ok {
		tm.Role = role
	}
	return nil
}

func (m *mockTenantRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, t := range m.tenants {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTenantRepo) ListAll(_ context.Context, _ *pagination.PaginationParams) ([]entity.Tenant, int64, error) {
	var out []entity.Tenant
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *mockTenantRepo) ListWithReminders(_ context.Context) ([]entity.Tenant, error) {
	var out []entity.Tenant
	for _, t := range m.tenants {
		if t.Settings.EmailReminders || t.Settings.SMSReminders {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTenantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.tenants)), nil
}

// --- billing ---

type mockClinicServiceRepo struct {
	services map[uuid.UUID]*entity.ClinicService
}

func newMockClinicServiceRepo() *mockClinicServiceRepo {
	return &mockClinicServiceRepo{services: make(map[uuid.UUID]*entity.ClinicService)}
}

func (m *mockClinicServiceRepo) Create(_ context.Context, s *entity.ClinicService) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.services[s.ID] = s
	return nil
}

func (m *mockClinicServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.ClinicService, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockClinicServiceRepo) GetByCode(_ context.Context, code string) (*entity.ClinicService, error) {
	for _, s := range m.services {
		if s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockClinicServiceRepo) Update(_ context.Context, s *entity.ClinicService) error {
	cp := *s
	m.services[s.ID] = &cp
	return nil
}

func (m *mockClinicServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.services, id)
	return nil
}

func (m *mockClinicServiceRepo) List(_ context.Context, _ *pagination.PaginationParams, _ string, activeOnly bool) ([]entity.ClinicService, int64, error) {
	var out []entity.ClinicService
	for _, s := range m.services {
		if !activeOnly || s.Active {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

type mockPaymentRepo struct {
	payments map[uuid.UUID][]entity.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[uuid.UUID][]entity.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.payments[p.InvoiceID] = append(m.payments[p.InvoiceID], *p)
	return nil
}

func (m *mockPaymentRepo) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	return append([]entity.Payment(nil), m.payments[invoiceID]...), nil
}

func (m *mockPaymentRepo) CountByInvoice(_ context.Context, invoiceID uuid.UUID) (int64, error) {
	return int64(len(m.payments[invoiceID])), nil
}

func (m *mockPaymentRepo) SumBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, list := range m.payments {
		for _, p := range list {
			if !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
				sum = sum.Add(p.Amount)
			}
		}
	}
	return sum, nil
}

type mockInvoiceRepo struct {
	invoices   map[uuid.UUID]*entity.Invoice
	payments   *mockPaymentRepo
	numbers    []string
	seqLocks   int
	itemLocks  map[uuid.UUID]int
	lastNumber string
}

func newMockInvoiceRepo(payments *mockPaymentRepo) *mockInvoiceRepo {
	return &mockInvoiceRepo{
		invoices:  make(map[uuid.UUID]*entity.Invoice),
		payments:  payments,
		itemLocks: make(map[uuid.UUID]int),
	}
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	m.numbers = append(m.numbers, inv.InvoiceNumber)
	m.lastNumber = inv.InvoiceNumber
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	cp.Payments = append([]entity.Payment(nil), m.payments.payments[id]...)
	return &cp, nil
}

func (m *mockInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	cp := *inv
	cp.Payments = nil
	if existing, ok := m.invoices[inv.ID]; ok {
		cp.Items = existing.Items
	}
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockInvoiceRepo) ReplaceItems(_ context.Context, invoiceID uuid.UUID, items []entity.InvoiceItem) error {
	if inv, ok := m.invoices[invoiceID]; ok {
		inv.Items = append([]entity.InvoiceItem(nil), items...)
	}
	return nil
}

func (m *mockInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.invoices, id)
	return nil
}

func (m *mockInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter, _ *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var out []entity.Invoice
	for _, inv := range m.invoices {
		if f.PatientID != nil && inv.PatientID != *f.PatientID {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (m *mockInvoiceRepo) LastInvoiceNumber(_ context.Context) (string, error) {
	return m.lastNumber, nil
}

func (m *mockInvoiceRepo) LockInvoiceSequence(_ context.Context) error {
	m.seqLocks++
	return nil
}

func (m *mockInvoiceRepo) LockInvoice(_ context.Context, id uuid.UUID) error {
	m.itemLocks[id]++
	return nil
}

func (m *mockInvoiceRepo) CountByStatus(_ context.Context) (map[enum.InvoiceStatus]int64, error) {
	counts := make(map[enum.InvoiceStatus]int64)
	for _, inv := range m.invoices {
		counts[inv.Status]++
	}
	return counts, nil
}

func (m *mockInvoiceRepo) OutstandingBalance(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range m.invoices {
		if inv.Status == enum.InvoiceStatusPending || inv.Status == enum.InvoiceStatusPartial {
			sum = sum.Add(inv.Balance)
		}
	}
	return sum, nil
}

// --- clinical ---

type mockNoteRepo struct {
	notes map[uuid.UUID]*entity.MedicalNote
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[uuid.UUID]*entity.MedicalNote)}
}

func (m *mockNoteRepo) Create(_ context.Context, n *entity.MedicalNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.MedicalNote, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteRepo) Update(_ context.Context, n *entity.MedicalNote) error {
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.notes, id)
	return nil
}

func (m *mockNoteRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _ *pagination.PaginationParams) ([]entity.MedicalNote, int64, error) {
	var out []entity.MedicalNote
	for _, n := range m.notes {
		if n.PatientID == patientID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

type mockPrescriptionRepo struct {
	prescriptions map[uuid.UUID]*entity.Prescription
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{prescriptions: make(map[uuid.UUID]*entity.Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *entity.Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.prescriptions[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPrescriptionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.PrescriptionStatus) error {
	if p, ok := m.prescriptions[id]; ok {
		p.Status = status
	}
	return nil
}

func (m *mockPrescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.prescriptions, id)
	return nil
}

func (m *mockPrescriptionRepo) List(_ context.Context, f repository.PrescriptionFilter, _ *pagination.PaginationParams) ([]entity.Prescription, int64, error) {
	var out []entity.Prescription
	for _, p := range m.prescriptions {
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type mockLabOrderRepo struct {
	orders map[uuid.UUID]*entity.LabOrder
}

func newMockLabOrderRepo() *mockLabOrderRepo {
	return &mockLabOrderRepo{orders: make(map[uuid.UUID]*entity.LabOrder)}
}

func (m *mockLabOrderRepo) Create(_ context.Context, o *entity.LabOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockLabOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.LabOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockLabOrderRepo) Update(_ context.Context, o *entity.LabOrder) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockLabOrderRepo) List(_ context.Context, f repository.LabOrderFilter, _ *pagination.PaginationParams) ([]entity.LabOrder, int64, error) {
	var out []entity.LabOrder
	for _, o := range m.orders {
		if f.PatientID != nil && o.PatientID != *f.PatientID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Type != nil && o.Type != *f.Type {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

// --- reminders ---

type reminderKey struct {
	appointmentID uuid.UUID
	channel       enum.ReminderChannel
}

type mockReminderLogRepo struct {
	logs map[reminderKey]*entity.ReminderLog
}

func newMockReminderLogRepo() *mockReminderLogRepo {
	return &mockReminderLogRepo{logs: make(map[reminderKey]*entity.ReminderLog)}
}

func (m *mockReminderLogRepo) Get(_ context.Context, appointmentID uuid.UUID, channel enum.ReminderChannel) (*entity.ReminderLog, error) {
	l, ok := m.logs[reminderKey{appointmentID, channel}]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *mockReminderLogRepo) Save(_ context.Context, l *entity.ReminderLog) error {
	cp := *l
	m.logs[reminderKey{l.AppointmentID, l.Channel}] = &cp
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, to)
	return "SM" + to, nil
}

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) SendAppointmentReminder(_ context.Context, to string, _ email.AppointmentReminder) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

// --- cache ---

type memoryCache struct {
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func strPtr(s string) *string { return &s }

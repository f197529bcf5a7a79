package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
	"github.com/sangkips/clinic-api/pkg/utils"
	"github.com/shopspring/decimal"
)

func TestDashboard_ServedFromCacheUntilInvalidated(t *testing.T) {
	tenants := newMockTenantRepo()
	settings := entity.DefaultClinicSettings()
	settings.Timezone = "UTC"
	tenants.addClinic(&entity.Tenant{ID: testTenantID, Name: "Riverside Clinic", Settings: settings})

	patients := newMockPatientRepo()
	patients.add(&entity.Patient{FirstName: "Brian", LastName: "Kamau"})
	appointments := newMockAppointmentRepo()
	now := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	appointments.add(&entity.Appointment{StartTime: now.Add(time.Hour), EndTime: now.Add(90 * time.Minute), Status: enum.AppointmentStatusScheduled})
	payments := newMockPaymentRepo()
	c := newMemoryCache()

	svc := NewDashboardService(patients, appointments, newMockInvoiceRepo(payments), payments, tenants, c, time.Minute, zerolog.Nop())
	svc.now = func() time.Time { return now }

	stats, err := svc.GetDashboardStats(clinicCtx())
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalPatients != 1 || stats.TodayAppointments != 1 || len(stats.RecentAppointments) != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if c.sets != 1 || appointments.listCalls != 1 {
		t.Fatalf("sets=%d listCalls=%d", c.sets, appointments.listCalls)
	}

	cached, err := svc.GetDashboardStats(clinicCtx())
	if err != nil {
		t.Fatalf("cached GetDashboardStats: %v", err)
	}
	if appointments.listCalls != 1 {
		t.Errorf("expected a cache hit, repository was queried again")
	}
	if cached.TotalPatients != 1 || !cached.OutstandingBalance.Equal(decimal.Zero) {
		t.Errorf("cached = %+v", cached)
	}

	if err := svc.InvalidateDashboard(clinicCtx()); err != nil {
		t.Fatalf("InvalidateDashboard: %v", err)
	}
	if _, err := svc.GetDashboardStats(clinicCtx()); err != nil {
		t.Fatalf("GetDashboardStats after invalidate: %v", err)
	}
	if appointments.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2", appointments.listCalls)
	}
}

func TestDashboard_RequiresClinic(t *testing.T) {
	svc := NewDashboardService(newMockPatientRepo(), newMockAppointmentRepo(), newMockInvoiceRepo(newMockPaymentRepo()), newMockPaymentRepo(), newMockTenantRepo(), newMemoryCache(), time.Minute, zerolog.Nop())
	if _, err := svc.GetDashboardStats(context.Background()); err != apperror.ErrTenantRequired {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestValidateClinicSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.ClinicSettings)
		fields []string
	}{
		{"defaults", func(*entity.ClinicSettings) {}, nil},
		{"unknown timezone", func(cs *entity.ClinicSettings) { cs.Timezone = "Mars/Olympus" }, []string{"timezone"}},
		{"currency length", func(cs *entity.ClinicSettings) { cs.Currency = "KSHS" }, []string{"currency"}},
		{"long appointments", func(cs *entity.ClinicSettings) { cs.DefaultAppointmentMinutes = 600 }, []string{"default_appointment_minutes"}},
		{"negative lead", func(cs *entity.ClinicSettings) { cs.ReminderLeadHours = -1 }, []string{"reminder_lead_hours"}},
		{"bad weekday", func(cs *entity.ClinicSettings) {
			cs.WorkingHours = []entity.WorkingHours{{Weekday: 7, Open: "08:00", Close: "17:00"}}
		}, []string{"working_hours[0].weekday"}},
		{"duplicate weekday", func(cs *entity.ClinicSettings) {
			cs.WorkingHours = []entity.WorkingHours{
				{Weekday: time.Monday, Open: "08:00", Close: "12:00"},
				{Weekday: time.Monday, Open: "13:00", Close: "17:00"},
			}
		}, []string{"working_hours[1].weekday"}},
		{"close before open", func(cs *entity.ClinicSettings) {
			cs.WorkingHours = []entity.WorkingHours{{Weekday: time.Tuesday, Open: "17:00", Close: "08:00"}}
		}, []string{"working_hours[0].close"}},
		{"malformed clock", func(cs *entity.ClinicSettings) {
			cs.WorkingHours = []entity.WorkingHours{{Weekday: time.Tuesday, Open: "8am", Close: "17:00"}}
		}, []string{"working_hours[0].open"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := entity.DefaultClinicSettings()
			cs.Timezone = "UTC"
			tt.mutate(&cs)

			errs := ValidateClinicSettings(&cs)
			if len(errs) != len(tt.fields) {
				t.Fatalf("errors = %+v, want fields %v", errs, tt.fields)
			}
			for i, field := range tt.fields {
				if errs[i].Field != field {
					t.Errorf("errors[%d].Field = %s, want %s", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	tenants := newMockTenantRepo()
	tenants.addClinic(&entity.Tenant{ID: testTenantID, Name: "Riverside Clinic", Settings: entity.DefaultClinicSettings()})
	svc := NewSettingsService(tenants)

	bad := entity.DefaultClinicSettings()
	bad.ReminderLeadHours = 500
	if _, err := svc.UpdateSettings(clinicCtx(), &bad); errorCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}

	next := entity.DefaultClinicSettings()
	next.Timezone = "UTC"
	next.Currency = "usd"
	next.SMSReminders = true
	saved, err := svc.UpdateSettings(clinicCtx(), &next)
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	stored := tenants.tenants[testTenantID].Settings
	if saved.Currency != "USD" || !stored.SMSReminders {
		t.Errorf("saved = %+v stored = %+v", saved, stored)
	}

	if _, err := svc.GetSettings(context.Background()); err != apperror.ErrTenantRequired {
		t.Errorf("expected ErrTenantRequired, got %v", err)
	}
}

type portalFixture struct {
	*appointmentFixture
	portal *PortalService
	labs   *mockLabOrderRepo
	userID uuid.UUID
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	f := newAppointmentFixture(t)
	userID := uuid.New()
	f.patient.UserID = &userID

	labs := newMockLabOrderRepo()
	portal := NewPortalService(f.patients, f.appointments, newMockInvoiceRepo(newMockPaymentRepo()), newMockPrescriptionRepo(), labs, f.svc)
	return &portalFixture{appointmentFixture: f, portal: portal, labs: labs, userID: userID}
}

func TestPortal_RequestAndCancelOwnAppointment(t *testing.T) {
	f := newPortalFixture(t)

	appt, err := f.portal.RequestAppointment(f.ctx, &PortalAppointmentInput{
		UserID:    f.userID,
		DoctorID:  f.doctor.ID,
		StartTime: monday(9, 0),
		EndTime:   monday(9, 30),
	})
	if err != nil {
		t.Fatalf("RequestAppointment: %v", err)
	}
	if appt.PatientID != f.patient.ID || appt.Status != enum.AppointmentStatusScheduled {
		t.Fatalf("appointment = %+v", appt)
	}

	_, err = f.portal.RequestAppointment(f.ctx, &PortalAppointmentInput{
		UserID:    f.userID,
		DoctorID:  f.doctor.ID,
		StartTime: monday(9, 15),
		EndTime:   monday(9, 45),
	})
	if errorCode(err) != http.StatusConflict {
		t.Fatalf("overlapping request: expected 409, got %v", err)
	}

	reason := "travelling"
	cancelled, err := f.portal.CancelAppointment(f.ctx, f.userID, appt.ID, &reason)
	if err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if cancelled.Status != enum.AppointmentStatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}
}

func TestPortal_CannotTouchOtherPatientsAppointments(t *testing.T) {
	f := newPortalFixture(t)
	other := f.patients.add(&entity.Patient{FirstName: "Kip", LastName: "Rotich"})
	foreign := f.appointments.add(&entity.Appointment{PatientID: other.ID, DoctorID: f.doctor.ID, StartTime: monday(10, 0), EndTime: monday(10, 30), Status: enum.AppointmentStatusScheduled})

	if _, err := f.portal.CancelAppointment(f.ctx, f.userID, foreign.ID, nil); errorCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	done := f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusCompleted)
	if _, err := f.portal.CancelAppointment(f.ctx, f.userID, done.ID, nil); errorCode(err) != http.StatusBadRequest {
		t.Fatalf("completed appointment: expected 400, got %v", err)
	}

	if _, err := f.portal.GetProfile(f.ctx, uuid.New()); errorCode(err) != http.StatusNotFound {
		t.Errorf("unlinked user: expected 404, got %v", err)
	}
}

func TestPortal_ListLabResultsOnlyCompleted(t *testing.T) {
	f := newPortalFixture(t)
	for _, status := range []enum.LabOrderStatus{enum.LabOrderStatusOrdered, enum.LabOrderStatusCompleted, enum.LabOrderStatusCancelled} {
		f.labs.Create(f.ctx, &entity.LabOrder{PatientID: f.patient.ID, Type: enum.LabOrderTypeLab, TestName: "FBC", Status: status})
	}

	results, err := f.portal.ListLabResults(f.ctx, f.userID, &pagination.PaginationParams{})
	if err != nil {
		t.Fatalf("ListLabResults: %v", err)
	}
	if len(results.Items) != 1 || results.Items[0].Status != enum.LabOrderStatusCompleted {
		t.Errorf("results = %+v", results.Items)
	}
}

func newAuthService(users *mockUserRepo) *AuthService {
	return NewAuthService(users, mockRoleRepo{}, utils.NewJWTManager("test-secret", 15*time.Minute, time.Hour))
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	users := newMockUserRepo()
	svc := newAuthService(users)

	user, err := svc.Register(context.Background(), &RegisterInput{FirstName: "Amina", LastName: "Otieno", Email: " Amina@Riverside.test ", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "amina@riverside.test" || !user.HasRole(DefaultRegistrationRole) {
		t.Fatalf("user = %+v", user)
	}

	if _, err := svc.Register(context.Background(), &RegisterInput{Email: "amina@riverside.test", Password: "another-pass"}); errorCode(err) != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %v", err)
	}

	out, err := svc.Login(context.Background(), &LoginInput{Email: "AMINA@riverside.test", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" || out.ExpiresIn != 900 {
		t.Errorf("login output = %+v", out)
	}

	if _, err := svc.Login(context.Background(), &LoginInput{Email: "amina@riverside.test", Password: "wrong"}); err != apperror.ErrInvalidCredentials {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), out.RefreshToken)
	if err != nil || refreshed.AccessToken == "" {
		t.Errorf("RefreshToken: %v", err)
	}
	if _, err := svc.RefreshToken(context.Background(), "not-a-token"); err != apperror.ErrInvalidToken {
		t.Errorf("garbage refresh token: expected ErrInvalidToken, got %v", err)
	}
}

func TestTenant_CreateMakesOwnerAndOwnerStays(t *testing.T) {
	tenants := newMockTenantRepo()
	users := newMockUserRepo()
	owner := users.add(&entity.User{Email: "owner@riverside.test"})
	tx := &passthroughTx{}
	svc := NewTenantService(tenants, users, tx)

	clinic, err := svc.CreateTenant(context.Background(), &CreateTenantInput{Name: "Riverside Clinic", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}
	if clinic.Slug != "riverside-clinic" || clinic.Settings.Currency == "" || tx.calls != 1 {
		t.Fatalf("clinic = %+v tx calls = %d", clinic, tx.calls)
	}
	membership := tenants.memberships[clinic.ID][owner.ID]
	if membership == nil || membership.Role != entity.MembershipOwner {
		t.Fatalf("owner membership = %+v", membership)
	}

	if _, err := svc.CreateTenant(context.Background(), &CreateTenantInput{Name: "Riverside Clinic", OwnerID: owner.ID}); errorCode(err) != http.StatusConflict {
		t.Errorf("duplicate slug: expected 409, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), clinic.ID, owner.ID); errorCode(err) != http.StatusBadRequest {
		t.Errorf("removing owner: expected 400, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), clinic.ID, uuid.New()); errorCode(err) != http.StatusNotFound {
		t.Errorf("removing a stranger: expected 404, got %v", err)
	}
}

func newPatientService(patients *mockPatientRepo, users *mockUserRepo, tenants *mockTenantRepo) *PatientService {
	payments := newMockPaymentRepo()
	return NewPatientService(patients, newMockAppointmentRepo(), newMockPrescriptionRepo(), newMockInvoiceRepo(payments), users, mockRoleRepo{}, tenants, &passthroughTx{})
}

func TestCreatePatient(t *testing.T) {
	patients := newMockPatientRepo()
	svc := newPatientService(patients, newMockUserRepo(), newMockTenantRepo())
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.CreatePatient(clinicCtx(), &CreatePatientInput{PatientInput: PatientInput{FirstName: "Brian", LastName: "Kamau", DateOfBirth: &dob}})
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if p.MRN == "" || p.TenantID != testTenantID || p.Gender != enum.GenderUnknown {
		t.Errorf("patient = %+v", p)
	}

	future := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreatePatient(clinicCtx(), &CreatePatientInput{PatientInput: PatientInput{FirstName: "Baby", LastName: "Kamau", DateOfBirth: &future}}); errorCode(err) != http.StatusUnprocessableEntity {
		t.Errorf("future birth date: expected 422, got %v", err)
	}
	if _, err := svc.CreatePatient(context.Background(), &CreatePatientInput{}); err != apperror.ErrTenantRequired {
		t.Errorf("expected ErrTenantRequired, got %v", err)
	}
}

func TestEnablePortalAccess(t *testing.T) {
	patients := newMockPatientRepo()
	users := newMockUserRepo()
	tenants := newMockTenantRepo()
	svc := newPatientService(patients, users, tenants)

	noEmail := patients.add(&entity.Patient{FirstName: "No", LastName: "Email"})
	if _, err := svc.EnablePortalAccess(clinicCtx(), &EnablePortalAccessInput{PatientID: noEmail.ID, Password: "portal-pass"}); errorCode(err) != http.StatusBadRequest {
		t.Fatalf("missing email: expected 400, got %v", err)
	}

	patient := patients.add(&entity.Patient{FirstName: "Brian", LastName: "Kamau", Email: strPtr("Brian@Example.test")})
	linked, err := svc.EnablePortalAccess(clinicCtx(), &EnablePortalAccessInput{PatientID: patient.ID, Password: "portal-pass"})
	if err != nil {
		t.Fatalf("EnablePortalAccess: %v", err)
	}
	if linked.UserID == nil {
		t.Fatal("patient was not linked to a user")
	}
	user := users.users[*linked.UserID]
	if user == nil || user.Email != "brian@example.test" || !user.HasRole(entity.RolePatient) {
		t.Fatalf("user = %+v", user)
	}
	if m := tenants.memberships[testTenantID][user.ID]; m == nil || m.Role != entity.MembershipMember {
		t.Errorf("membership = %+v", m)
	}

	if _, err := svc.EnablePortalAccess(clinicCtx(), &EnablePortalAccessInput{PatientID: patient.ID, Password: "portal-pass"}); errorCode(err) != http.StatusConflict {
		t.Errorf("second enable: expected 409, got %v", err)
	}
}

func TestCatalog_DuplicateCode(t *testing.T) {
	svc := NewCatalogService(newMockClinicServiceRepo())

	created, err := svc.CreateService(clinicCtx(), &ClinicServiceInput{Code: " cons ", Name: "Consultation", Price: decimal.RequireFromString("1500.005")})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if created.Code != "CONS" || !created.Active || !created.Price.Equal(decimal.RequireFromString("1500.01")) {
		t.Errorf("service = %+v", created)
	}

	if _, err := svc.CreateService(clinicCtx(), &ClinicServiceInput{Code: "CONS", Name: "Again", Price: decimal.NewFromInt(1)}); errorCode(err) != http.StatusConflict {
		t.Errorf("duplicate code: expected 409, got %v", err)
	}
	if _, err := svc.CreateService(clinicCtx(), &ClinicServiceInput{Code: "NEG", Name: "Refund", Price: decimal.NewFromInt(-1)}); errorCode(err) != http.StatusBadRequest {
		t.Errorf("negative price: expected 400, got %v", err)
	}
}

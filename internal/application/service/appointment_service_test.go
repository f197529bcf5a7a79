package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/enum"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	infraRepo "github.com/sangkips/clinic-api/internal/infrastructure/repository"
	"github.com/sangkips/clinic-api/pkg/apperror"
	"github.com/sangkips/clinic-api/pkg/pagination"
)

type appointmentFixture struct {
	svc          *AppointmentService
	appointments *mockAppointmentRepo
	patients     *mockPatientRepo
	users        *mockUserRepo
	tenants      *mockTenantRepo
	doctor       *entity.User
	patient      *entity.Patient
	ctx          context.Context
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	f := &appointmentFixture{
		appointments: newMockAppointmentRepo(),
		patients:     newMockPatientRepo(),
		users:        newMockUserRepo(),
		tenants:      newMockTenantRepo(),
		ctx:          infraRepo.WithTenant(context.Background(), testTenantID),
	}

	settings := entity.DefaultClinicSettings()
	settings.Timezone = "UTC"
	settings.WorkingHours = []entity.WorkingHours{{Weekday: time.Monday, Open: "09:00", Close: "11:00"}}
	f.tenants.addClinic(&entity.Tenant{ID: testTenantID, Name: "Riverside Clinic", Slug: "riverside", Settings: settings})

	f.doctor = f.users.add(&entity.User{FirstName: "Amina", LastName: "Otieno", Email: "amina@riverside.test", Roles: []entity.Role{roleNamed(entity.RoleDoctor)}})
	f.tenants.join(testTenantID, f.doctor.ID, entity.MembershipMember)
	f.patient = f.patients.add(&entity.Patient{MRN: "MRN-1", FirstName: "Brian", LastName: "Kamau"})

	f.svc = NewAppointmentService(f.appointments, f.patients, f.users, f.tenants, &passthroughTx{})
	f.svc.now = func() time.Time { return time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

// monday returns hh:mm on Monday 7 January 2030, UTC
func monday(hour, min int) time.Time {
	return time.Date(2030, 1, 7, hour, min, 0, 0, time.UTC)
}

func (f *appointmentFixture) book(start, end time.Time, status enum.AppointmentStatus) *entity.Appointment {
	return f.appointments.add(&entity.Appointment{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	})
}

func (f *appointmentFixture) createInput(start, end time.Time) *CreateAppointmentInput {
	return &CreateAppointmentInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreateAppointment_DefaultsToScheduled(t *testing.T) {
	f := newAppointmentFixture(t)

	appt, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 0), monday(9, 30)))
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if appt.Status != enum.AppointmentStatusScheduled {
		t.Errorf("status = %s, want SCHEDULED", appt.Status)
	}
	if appt.TenantID != testTenantID {
		t.Errorf("tenant = %s", appt.TenantID)
	}
	if len(f.appointments.locks) != 1 || f.appointments.locks[0] != f.doctor.ID {
		t.Errorf("expected the doctor's schedule lock, got %v", f.appointments.locks)
	}
}

func TestCreateAppointment_DoctorBusy(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)

	_, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 15), monday(9, 45)))
	if errorCode(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if err.Error() != MsgDoctorBusy {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCreateAppointment_DoctorBusyAtAnotherClinic(t *testing.T) {
	f := newAppointmentFixture(t)
	elsewhere := f.book(monday(10, 0), monday(10, 30), enum.AppointmentStatusConfirmed)
	elsewhere.TenantID = uuid.New()

	_, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(10, 0), monday(10, 30)))
	if errorCode(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestCreateAppointment_BackToBackAllowed(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusConfirmed)

	if _, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 30), monday(10, 0))); err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}
	if _, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(8, 30), monday(9, 0))); err != nil {
		t.Fatalf("booking ending at the next start rejected: %v", err)
	}
}

func TestCreateAppointment_InertBookingsDoNotBlock(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusCancelled)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusNoShow)

	if _, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 0), monday(9, 30))); err != nil {
		t.Fatalf("cancelled or no-show booking blocked the slot: %v", err)
	}
}

func TestCreateAppointment_CompletedBookingBlocks(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusCompleted)

	_, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 0), monday(9, 30)))
	if errorCode(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestCreateAppointment_CancelledStatusSkipsConflictCheck(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)

	input := f.createInput(monday(9, 0), monday(9, 30))
	input.Status = enum.AppointmentStatusCancelled
	if _, err := f.svc.CreateAppointment(f.ctx, input); err != nil {
		t.Fatalf("expected cancelled record to be stored, got %v", err)
	}
	if len(f.appointments.locks) != 0 {
		t.Error("an inert appointment must not take the schedule lock")
	}
}

func TestCreateAppointment_InvalidTimeSlot(t *testing.T) {
	f := newAppointmentFixture(t)

	for name, end := range map[string]time.Time{
		"end before start": monday(8, 0),
		"zero length":      monday(9, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateAppointment(f.ctx, f.createInput(monday(9, 0), end))
			if errorCode(err) != http.StatusBadRequest || err.Error() != MsgInvalidTimeSlot {
				t.Fatalf("expected 400 %q, got %v", MsgInvalidTimeSlot, err)
			}
		})
	}
}

func TestCreateAppointment_RequiresDoctorRole(t *testing.T) {
	f := newAppointmentFixture(t)
	nurse := f.users.add(&entity.User{FirstName: "Njeri", Email: "njeri@riverside.test", Roles: []entity.Role{roleNamed(entity.RoleNurse)}})
	f.tenants.join(testTenantID, nurse.ID, entity.MembershipMember)

	input := f.createInput(monday(9, 0), monday(9, 30))
	input.DoctorID = nurse.ID
	if _, err := f.svc.CreateAppointment(f.ctx, input); errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCreateAppointment_DoctorMustBelongToClinic(t *testing.T) {
	f := newAppointmentFixture(t)
	outsider := f.users.add(&entity.User{FirstName: "Visiting", Email: "visiting@elsewhere.test", Roles: []entity.Role{roleNamed(entity.RoleDoctor)}})

	input := f.createInput(monday(9, 0), monday(9, 30))
	input.DoctorID = outsider.ID
	if _, err := f.svc.CreateAppointment(f.ctx, input); errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	f := newAppointmentFixture(t)

	input := f.createInput(monday(9, 0), monday(9, 30))
	input.PatientID = uuid.New()
	if _, err := f.svc.CreateAppointment(f.ctx, input); errorCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCreateAppointment_RequiresTenant(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.CreateAppointment(context.Background(), f.createInput(monday(9, 0), monday(9, 30)))
	if err != apperror.ErrTenantRequired {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestUpdateAppointment_RescheduleExcludesItself(t *testing.T) {
	f := newAppointmentFixture(t)
	appt := f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)

	start, end := monday(9, 10), monday(9, 40)
	updated, err := f.svc.UpdateAppointment(f.ctx, &UpdateAppointmentInput{ID: appt.ID, StartTime: &start, EndTime: &end})
	if err != nil {
		t.Fatalf("an appointment must not conflict with itself: %v", err)
	}
	if !updated.StartTime.Equal(start) || !updated.EndTime.Equal(end) {
		t.Errorf("times not updated: %v - %v", updated.StartTime, updated.EndTime)
	}
}

func TestUpdateAppointment_RescheduleIntoConflict(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)
	second := f.book(monday(10, 0), monday(10, 30), enum.AppointmentStatusScheduled)

	start, end := monday(9, 20), monday(9, 50)
	_, err := f.svc.UpdateAppointment(f.ctx, &UpdateAppointmentInput{ID: second.ID, StartTime: &start, EndTime: &end})
	if errorCode(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if stored := f.appointments.appointments[second.ID]; !stored.StartTime.Equal(monday(10, 0)) {
		t.Error("rejected reschedule must not be persisted")
	}
}

func TestUpdateAppointment_NotesOnlySkipsConflictCheck(t *testing.T) {
	f := newAppointmentFixture(t)
	appt := f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)

	if _, err := f.svc.UpdateAppointment(f.ctx, &UpdateAppointmentInput{ID: appt.ID, Notes: strPtr("bring lab results")}); err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if len(f.appointments.locks) != 0 {
		t.Error("editing notes must not re-run the conflict check")
	}
}

func TestUpdateAppointment_TerminalIsReadOnly(t *testing.T) {
	for _, status := range []enum.AppointmentStatus{
		enum.AppointmentStatusCompleted,
		enum.AppointmentStatusCancelled,
		enum.AppointmentStatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newAppointmentFixture(t)
			appt := f.book(monday(9, 0), monday(9, 30), status)

			start, end := monday(10, 0), monday(10, 30)
			if _, err := f.svc.UpdateAppointment(f.ctx, &UpdateAppointmentInput{ID: appt.ID, StartTime: &start, EndTime: &end}); errorCode(err) != http.StatusBadRequest {
				t.Errorf("reschedule: expected 400, got %v", err)
			}

			notes := "late entry"
			if _, err := f.svc.UpdateAppointment(f.ctx, &UpdateAppointmentInput{ID: appt.ID, Notes: &notes}); errorCode(err) != http.StatusBadRequest {
				t.Errorf("notes: expected 400, got %v", err)
			}
			if stored := f.appointments.appointments[appt.ID]; stored.Notes != nil {
				t.Errorf("notes were saved: %q", *stored.Notes)
			}
		})
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    enum.AppointmentStatus
		to      enum.AppointmentStatus
		wantErr bool
	}{
		{"confirm", enum.AppointmentStatusScheduled, enum.AppointmentStatusConfirmed, false},
		{"start", enum.AppointmentStatusConfirmed, enum.AppointmentStatusInProgress, false},
		{"complete", enum.AppointmentStatusInProgress, enum.AppointmentStatusCompleted, false},
		{"no show", enum.AppointmentStatusScheduled, enum.AppointmentStatusNoShow, false},
		{"reopen completed", enum.AppointmentStatusCompleted, enum.AppointmentStatusScheduled, true},
		{"revive cancelled", enum.AppointmentStatusCancelled, enum.AppointmentStatusConfirmed, true},
		{"revive no show", enum.AppointmentStatusNoShow, enum.AppointmentStatusScheduled, true},
		{"unknown status", enum.AppointmentStatusScheduled, enum.AppointmentStatus("LOST"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			appt := f.book(monday(9, 0), monday(9, 30), tt.from)

			got, err := f.svc.UpdateStatus(f.ctx, appt.ID, tt.to, nil)
			if tt.wantErr {
				if errorCode(err) != http.StatusBadRequest {
					t.Fatalf("expected 400, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("status = %s, want %s", got.Status, tt.to)
			}
		})
	}
}

func TestCancelAppointment_RecordsReasonWithoutConflictCheck(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)
	overlapping := f.book(monday(9, 15), monday(9, 45), enum.AppointmentStatusScheduled)

	got, err := f.svc.CancelAppointment(f.ctx, overlapping.ID, strPtr("patient travelling"))
	if err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if got.Status != enum.AppointmentStatusCancelled {
		t.Errorf("status = %s", got.Status)
	}
	if got.CancelledReason == nil || *got.CancelledReason != "patient travelling" {
		t.Errorf("cancelled reason = %v", got.CancelledReason)
	}
	if len(f.appointments.locks) != 0 {
		t.Error("cancelling must not run the conflict check")
	}
}

func TestDeleteAppointment_OnlyScheduledOrCancelled(t *testing.T) {
	f := newAppointmentFixture(t)
	scheduled := f.book(monday(9, 0), monday(9, 30), enum.AppointmentStatusScheduled)
	completed := f.book(monday(10, 0), monday(10, 30), enum.AppointmentStatusCompleted)

	if err := f.svc.DeleteAppointment(f.ctx, scheduled.ID); err != nil {
		t.Fatalf("delete scheduled: %v", err)
	}
	if err := f.svc.DeleteAppointment(f.ctx, completed.ID); errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting a completed appointment, got %v", err)
	}
	if err := f.svc.DeleteAppointment(f.ctx, uuid.New()); errorCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestListAppointments_RejectsInvertedRange(t *testing.T) {
	f := newAppointmentFixture(t)
	from, to := monday(10, 0), monday(9, 0)

	_, err := f.svc.ListAppointments(f.ctx, repository.AppointmentFilter{From: &from, To: &to}, &pagination.PaginationParams{})
	if errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetAvailability_RemovesBookedSlots(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(monday(9, 30), monday(10, 0), enum.AppointmentStatusScheduled)
	f.book(monday(10, 0), monday(10, 30), enum.AppointmentStatusCancelled)

	got, err := f.svc.GetAvailability(f.ctx, &AvailabilityInput{DoctorID: f.doctor.ID, Date: "2030-01-07", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}

	want := []time.Time{monday(9, 0), monday(10, 0), monday(10, 30)}
	if len(got.Slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got.Slots), len(want), got.Slots)
	}
	for i, start := range want {
		if !got.Slots[i].Start.Equal(start) {
			t.Errorf("slot %d starts %v, want %v", i, got.Slots[i].Start, start)
		}
	}
	if got.Timezone != "UTC" || got.Duration != 30 {
		t.Errorf("timezone=%s duration=%d", got.Timezone, got.Duration)
	}
}

func TestGetAvailability_UsesClinicDefaultDuration(t *testing.T) {
	f := newAppointmentFixture(t)
	clinic := f.tenants.tenants[testTenantID]
	clinic.Settings.DefaultAppointmentMinutes = 60

	got, err := f.svc.GetAvailability(f.ctx, &AvailabilityInput{DoctorID: f.doctor.ID, Date: "2030-01-07"})
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if got.Duration != 60 || len(got.Slots) != 2 {
		t.Fatalf("duration=%d slots=%d", got.Duration, len(got.Slots))
	}
}

func TestGetAvailability_ClosedDay(t *testing.T) {
	f := newAppointmentFixture(t)

	got, err := f.svc.GetAvailability(f.ctx, &AvailabilityInput{DoctorID: f.doctor.ID, Date: "2030-01-06", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if len(got.Slots) != 0 {
		t.Errorf("expected no slots on a closed day, got %v", got.Slots)
	}
}

func TestGetAvailability_DropsStartedSlots(t *testing.T) {
	f := newAppointmentFixture(t)
	f.svc.now = func() time.Time { return monday(9, 45) }

	got, err := f.svc.GetAvailability(f.ctx, &AvailabilityInput{DoctorID: f.doctor.ID, Date: "2030-01-07", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if len(got.Slots) != 2 || !got.Slots[0].Start.Equal(monday(10, 0)) {
		t.Fatalf("unexpected slots %v", got.Slots)
	}
}

func TestGetAvailability_BadDate(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.GetAvailability(f.ctx, &AvailabilityInput{DoctorID: f.doctor.ID, Date: "07/01/2030"})
	if errorCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

// Package scheduling holds the pure rules that decide whether an appointment
// slot is well formed and whether it collides with a doctor's existing bookings.
package scheduling

import (
	"time"

	"github.com/sangkips/clinic-api/internal/domain/enum"
)

// TimeSlot is a half-open interval [Start, End)
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the slot
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Booking is an existing appointment as seen by the conflict rules
type Booking struct {
	ID     string
	Slot   TimeSlot
	Status enum.AppointmentStatus
}

// IsValidTimeSlot reports whether end is strictly after start.
func IsValidTimeSlot(start, end time.Time) bool {
	return end.After(start)
}

// HasTimeConflict reports whether two slots overlap. Touching endpoints do not overlap.
func HasTimeConflict(existing, proposed TimeSlot) bool {
	return existing.Start.Before(proposed.End) && proposed.Start.Before(existing.End)
}

// ShouldCheckForConflicts reports whether a booking in the given status occupies
// the doctor's time. Cancelled and no-show appointments never block a slot.
func ShouldCheckForConflicts(status enum.AppointmentStatus) bool {
	switch status {
	case enum.AppointmentStatusScheduled,
		enum.AppointmentStatusConfirmed,
		enum.AppointmentStatusInProgress,
		enum.AppointmentStatusCompleted:
		return true
	}
	return false
}

// FirstConflict returns the first booking that blocks the proposed slot.
// The booking with excludeID is ignored so that an appointment never collides with itself.
func FirstConflict(proposed TimeSlot, bookings []Booking, excludeID string) (Booking, bool) {
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !ShouldCheckForConflicts(b.Status) {
			continue
		}
		if HasTimeConflict(b.Slot, proposed) {
			return b, true
		}
	}
	return Booking{}, false
}

// FreeSlots splits window into consecutive slots of the given length and keeps
// the ones that no active booking overlaps. A trailing remainder shorter than
// length is dropped.
func FreeSlots(window TimeSlot, length time.Duration, bookings []Booking) []TimeSlot {
	if length <= 0 || !IsValidTimeSlot(window.Start, window.End) {
		return nil
	}

	var free []TimeSlot
	for start := window.Start; !start.Add(length).After(window.End); start = start.Add(length) {
		candidate := TimeSlot{Start: start, End: start.Add(length)}
		if _, blocked := FirstConflict(candidate, bookings, ""); !blocked {
			free = append(free, candidate)
		}
	}
	return free
}

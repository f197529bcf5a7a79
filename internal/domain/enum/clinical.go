package enum

// PrescriptionStatus represents the state of a prescription
type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "ACTIVE"
	PrescriptionStatusCompleted PrescriptionStatus = "COMPLETED"
	PrescriptionStatusCancelled PrescriptionStatus = "CANCELLED"
)

func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case PrescriptionStatusActive, PrescriptionStatusCompleted, PrescriptionStatusCancelled:
		return true
	}
	return false
}

// LabOrderType distinguishes laboratory tests from imaging studies
type LabOrderType string

const (
	LabOrderTypeLab     LabOrderType = "LAB"
	LabOrderTypeImaging LabOrderType = "IMAGING"
)

func (t LabOrderType) IsValid() bool {
	return t == LabOrderTypeLab || t == LabOrderTypeImaging
}

// LabPriority is the clinical urgency of an order
type LabPriority string

const (
	LabPriorityRoutine LabPriority = "ROUTINE"
	LabPriorityUrgent  LabPriority = "URGENT"
	LabPriorityStat    LabPriority = "STAT"
)

func (p LabPriority) IsValid() bool {
	switch p {
	case LabPriorityRoutine, LabPriorityUrgent, LabPriorityStat:
		return true
	}
	return false
}

// LabOrderStatus represents the progress of a lab or imaging order
type LabOrderStatus string

const (
	LabOrderStatusOrdered    LabOrderStatus = "ORDERED"
	LabOrderStatusInProgress LabOrderStatus = "IN_PROGRESS"
	LabOrderStatusCompleted  LabOrderStatus = "COMPLETED"
	LabOrderStatusCancelled  LabOrderStatus = "CANCELLED"
)

func (s LabOrderStatus) IsValid() bool {
	switch s {
	case LabOrderStatusOrdered, LabOrderStatusInProgress, LabOrderStatusCompleted, LabOrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the order is closed
func (s LabOrderStatus) IsTerminal() bool {
	return s == LabOrderStatusCompleted || s == LabOrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Orders only move forward; any open order may be cancelled.
func (s LabOrderStatus) CanTransitionTo(next LabOrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case LabOrderStatusCancelled:
		return true
	case LabOrderStatusInProgress:
		return s == LabOrderStatusOrdered
	case LabOrderStatusCompleted:
		return s == LabOrderStatusOrdered || s == LabOrderStatusInProgress
	}
	return false
}

// Gender of a patient as recorded at registration
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = "UNKNOWN"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

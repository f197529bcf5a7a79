package enum

// ReminderChannel is the delivery channel of an appointment reminder
type ReminderChannel string

const (
	ReminderChannelSMS   ReminderChannel = "SMS"
	ReminderChannelEmail ReminderChannel = "EMAIL"
)

// ReminderStatus records the outcome of a reminder send
type ReminderStatus string

const (
	ReminderStatusSent   ReminderStatus = "SENT"
	ReminderStatusFailed ReminderStatus = "FAILED"
)

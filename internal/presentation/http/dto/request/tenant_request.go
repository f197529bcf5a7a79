package request

// CreateTenantRequest represents a clinic creation request
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
	Slug string `json:"slug" binding:"omitempty,max=100"`
}

// UpdateTenantRequest represents a clinic rename
type UpdateTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// InviteMemberRequest adds an existing user to the clinic by ID or email
type InviteMemberRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"omitempty,oneof=admin member"`
}

// UpdateMemberRoleRequest changes a member's clinic role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin member"`
}

// AssignUserToTenantRequest is used by super admins to place a user in a clinic
type AssignUserToTenantRequest struct {
	TenantID string `json:"tenant_id" binding:"required,uuid"`
	UserID   string `json:"user_id" binding:"required,uuid"`
	Role     string `json:"role" binding:"omitempty,oneof=owner admin member"`
}

// UpdateUserRolesRequest replaces a user's roles
type UpdateUserRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required,min=1"`
}

// WorkingHoursRequest is one opening window
type WorkingHoursRequest struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"`
	Open    string `json:"open" binding:"required,clock"`
	Close   string `json:"close" binding:"required,clock"`
}

// SettingsRequest replaces the clinic settings
type SettingsRequest struct {
	Timezone                  string                `json:"timezone" binding:"required"`
	Currency                  string                `json:"currency" binding:"required,len=3"`
	Locale                    string                `json:"locale" binding:"omitempty,max=20"`
	Phone                     string                `json:"phone" binding:"omitempty,phone"`
	Email                     string                `json:"email" binding:"omitempty,email"`
	Address                   string                `json:"address" binding:"omitempty,max=500"`
	DefaultAppointmentMinutes int                   `json:"default_appointment_minutes" binding:"min=0,max=480"`
	WorkingHours              []WorkingHoursRequest `json:"working_hours" binding:"omitempty,dive"`
	ReminderLeadHours         int                   `json:"reminder_lead_hours" binding:"min=0,max=168"`
	EmailReminders            bool                  `json:"email_reminders"`
	SMSReminders              bool                  `json:"sms_reminders"`
}

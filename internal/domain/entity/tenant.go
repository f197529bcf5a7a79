package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a clinic. Every clinical and billing record belongs to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Settings  ClinicSettings `gorm:"type:jsonb" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Owner   User               `gorm:"foreignKey:OwnerID" json:"-"`
	Members []TenantMembership `gorm:"foreignKey:TenantID" json:"-"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Tenant) TableName() string {
	return "tenants"
}

// Membership roles within a clinic
const (
	MembershipOwner  = "owner"
	MembershipAdmin  = "admin"
	MembershipMember = "member"
)

// MemberUser is the subset of user fields returned with a membership
type MemberUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// TenantMembership links a user to a clinic
type TenantMembership struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"size:50;default:'member'" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	MemberUser *MemberUser `gorm:"-" json:"user,omitempty"`
}

// PopulateUserDetails fills MemberUser from the preloaded User
func (tm *TenantMembership) PopulateUserDetails() {
	if tm.User.ID != uuid.Nil {
		tm.MemberUser = &MemberUser{
			ID:        tm.User.ID,
			FirstName: tm.User.FirstName,
			LastName:  tm.User.LastName,
			Email:     tm.User.Email,
		}
	}
}

func (TenantMembership) TableName() string {
	return "tenant_memberships"
}

// WorkingHours is the opening window of the clinic on one weekday, as "HH:MM" in the clinic timezone
type WorkingHours struct {
	Weekday time.Weekday `json:"weekday"`
	Open    string       `json:"open"`
	Close   string       `json:"close"`
}

// ClinicSettings holds the administrative configuration of a clinic
type ClinicSettings struct {
	Timezone string `json:"timezone,omitempty"`
	Currency string `json:"currency,omitempty"`
	Locale   string `json:"locale,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`

	DefaultAppointmentMinutes int            `json:"default_appointment_minutes,omitempty"`
	WorkingHours              []WorkingHours `json:"working_hours,omitempty"`

	ReminderLeadHours int  `json:"reminder_lead_hours,omitempty"`
	EmailReminders    bool `json:"email_reminders"`
	SMSReminders      bool `json:"sms_reminders"`
}

func (cs *ClinicSettings) Scan(value interface{}) error {
	if value == nil {
		*cs = ClinicSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ClinicSettings: unsupported type")
	}

	return json.Unmarshal(bytes, cs)
}

func (cs ClinicSettings) Value() (driver.Value, error) {
	return json.Marshal(cs)
}

// Location returns the clinic timezone, falling back to UTC
func (cs ClinicSettings) Location() *time.Location {
	if cs.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cs.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HoursFor returns the opening hours for the given weekday
func (cs ClinicSettings) HoursFor(day time.Weekday) (WorkingHours, bool) {
	for _, wh := range cs.WorkingHours {
		if wh.Weekday == day {
			return wh, true
		}
	}
	return WorkingHours{}, false
}

// DefaultClinicSettings returns the settings applied to a newly created clinic
func DefaultClinicSettings() ClinicSettings {
	weekdays := make([]WorkingHours, 0, 5)
	for day := time.Monday; day <= time.Friday; day++ {
		weekdays = append(weekdays, WorkingHours{Weekday: day, Open: "08:00", Close: "17:00"})
	}
	return ClinicSettings{
		Timezone:                  "Africa/Nairobi",
		Currency:                  "KES",
		Locale:                    "en-KE",
		DefaultAppointmentMinutes: 30,
		WorkingHours:              weekdays,
		ReminderLeadHours:         24,
		EmailReminders:            true,
		SMSReminders:              false,
	}
}

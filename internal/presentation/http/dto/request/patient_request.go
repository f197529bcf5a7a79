package request

// PatientRequest represents the body of patient create and update requests
type PatientRequest struct {
	FirstName             string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName              string  `json:"last_name" binding:"required,min=1,max=100"`
	DateOfBirth           string  `json:"date_of_birth" binding:"omitempty,date"`
	Gender                string  `json:"gender" binding:"omitempty,gender"`
	Phone                 *string `json:"phone" binding:"omitempty,phone"`
	Email                 *string `json:"email" binding:"omitempty,email"`
	Address               *string `json:"address" binding:"omitempty,max=500"`
	BloodGroup            *string `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies             *string `json:"allergies"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,phone"`
}

// PatientFilterRequest represents patient list parameters
type PatientFilterRequest struct {
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Cursor    string `form:"cursor"`
	Direction string `form:"direction" binding:"omitempty,oneof=next prev"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PortalAccessRequest sets the password of a new portal account
type PortalAccessRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

package domain

import "time"

// CRMRecord is a deal/contact row, the unit the whole CRM surface works on.
// Work, Tags and LeadSources are multi-select values stored as text arrays.
type CRMRecord struct {
	ID           string     `json:"id" db:"id"`
	ContactName  string     `json:"contact_name" db:"contact_name"`
	Company      string     `json:"company" db:"company"`
	Work         []string   `json:"work" db:"work"`
	Status       string     `json:"status" db:"status"`
	LastContact  *time.Time `json:"last_contact,omitempty" db:"last_contact"`
	NextFollowUp *time.Time `json:"next_follow_up,omitempty" db:"next_follow_up"`
	DealValue    *float64   `json:"deal_value,omitempty" db:"deal_value"`
	Phone        string     `json:"phone" db:"phone"`
	Notes        string     `json:"notes" db:"notes"`
	Email        string     `json:"email" db:"email"`
	Tags         []string   `json:"tags" db:"tags"`
	LeadSources  []string   `json:"lead_sources" db:"lead_sources"`
	AssignedTo   string     `json:"assigned_to" db:"assigned_to"`
	CreatedAt    time.Time  `json:"created" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated" db:"updated_at"`
}

type CreateCRMRequest struct {
	ContactName  string   `json:"contact_name" validate:"required"`
	Company      string   `json:"company"`
	Work         []string `json:"work"`
	Status       string   `json:"status"`
	LastContact  *string  `json:"last_contact"`   // YYYY-MM-DD
	NextFollowUp *string  `json:"next_follow_up"` // YYYY-MM-DD
	DealValue    *float64 `json:"deal_value"`
	Phone        string   `json:"phone"`
	Notes        string   `json:"notes"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Tags         []string `json:"tags"`
	LeadSources  []string `json:"lead_sources"`
	AssignedTo   string   `json:"assigned_to"`
}

// UpdateCRMRequest carries patch semantics: nil fields leave the stored
// value untouched.
type UpdateCRMRequest struct {
	ContactName  *string   `json:"contact_name"`
	Company      *string   `json:"company"`
	Work         *[]string `json:"work"`
	Status       *string   `json:"status"`
	LastContact  *string   `json:"last_contact"`   // YYYY-MM-DD
	NextFollowUp *string   `json:"next_follow_up"` // YYYY-MM-DD
	DealValue    *float64  `json:"deal_value"`
	Phone        *string   `json:"phone"`
	Notes        *string   `json:"notes"`
	Email        *string   `json:"email"`
	Tags         *[]string `json:"tags"`
	LeadSources  *[]string `json:"lead_sources"`
	AssignedTo   *string   `json:"assigned_to"`
}

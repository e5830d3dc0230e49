package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	School       string    `json:"school,omitempty"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the account may perform authenticated operations.
func (u User) Active() bool {
	return u.Status == StatusActive
}

// ProfileUpdate holds the self-service editable fields; nil means unchanged.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	School      *string
}

// Apply returns u with the non-nil fields of p applied.
func (p ProfileUpdate) Apply(u User) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.School != nil {
		u.School = *p.School
	}
	return u
}

package models

import (
	"time"
)

// Auth sources
const (
	AuthSourceGoogle = "google"
)

type User struct {
	ID         string  `gorm:"primaryKey"                json:"id"`
	ExternalID *string `gorm:"uniqueIndex"               json:"external_id,omitempty"` // Identity provider subject
	AuthSource string  `gorm:"not null;default:'google'" json:"auth_source"`
	Email      *string `gorm:"uniqueIndex"               json:"email,omitempty"`
	Name       string  `json:"name"`
	Picture    string  `json:"picture"`
	Role       string  `gorm:"not null;default:'user'"   json:"role"`

	// Single refresh-token slot for the browser session. Writing a new
	// hash invalidates whatever token was issued before.
	RefreshTokenHash      *string    `gorm:"uniqueIndex;size:64" json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailOrEmpty returns the user's email or "" when none is on record.
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// HasRefreshToken reports whether the refresh slot holds an unexpired token at now.
func (u *User) HasRefreshToken(now time.Time) bool {
	return u.RefreshTokenHash != nil &&
		u.RefreshTokenExpiresAt != nil &&
		now.Before(*u.RefreshTokenExpiresAt)
}

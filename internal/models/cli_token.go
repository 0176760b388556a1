package models

import (
	"time"
)

// CliToken is a long-lived credential minted for the command-line tool.
// Rows are never deleted; RevokedAt is set once and never cleared.
type CliToken struct {
	ID                string     `gorm:"primaryKey"                   json:"id"`
	TokenHash         string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	RawToken          string     `gorm:"-"                            json:"-"` // In-memory only; never persisted to DB
	UserID            string     `gorm:"index;not null"               json:"-"`
	Label             string     `gorm:"size:255;not null"            json:"label"`
	DeviceName        string     `gorm:"size:255"                     json:"device_name"`
	DeviceFingerprint *string    `gorm:"size:255"                     json:"-"`
	OriginAddress     string     `gorm:"size:45"                      json:"origin_address"`
	UserAgent         string     `gorm:"size:500"                     json:"user_agent,omitempty"`
	LastUsedAt        *time.Time `                                    json:"last_used_at"`
	CreatedAt         time.Time  `gorm:"index"                        json:"created_at"`
	ExpiresAt         time.Time  `gorm:"index;not null"               json:"expires_at"`
	RevokedAt         *time.Time `gorm:"index"                        json:"revoked_at"`
}

func (CliToken) TableName() string {
	return "cli_tokens"
}

func (t *CliToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *CliToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsUsable reports whether the token would pass validation at now.
func (t *CliToken) IsUsable(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

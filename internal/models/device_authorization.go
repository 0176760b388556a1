package models

import (
	"time"
)

// DeviceAuthorization is one in-flight CLI login. The raw device code is
// only held in memory between issuance and the response.
type DeviceAuthorization struct {
	ID             string     `gorm:"primaryKey"`
	DeviceCode     string     `gorm:"-"`
	DeviceCodeHash string     `gorm:"uniqueIndex;size:64;not null"`
	UserCode       string     `gorm:"uniqueIndex;size:16;not null"`
	UserID         *string    `gorm:"index"`
	ApprovedAt     *time.Time
	ExpiresAt      time.Time  `gorm:"index;not null"`
	Attempts       int        `gorm:"not null;default:0"`
	LastPollAt     *time.Time
	Interval       int        `gorm:"column:poll_interval;not null"` // seconds currently advertised to the poller
	OriginAddress  string     `gorm:"size:45;index"`
	CreatedAt      time.Time  `gorm:"index"`
}

func (DeviceAuthorization) TableName() string {
	return "cli_device_codes"
}

func (d *DeviceAuthorization) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

func (d *DeviceAuthorization) IsApproved() bool {
	return d.UserID != nil && d.ApprovedAt != nil
}

package models

import "time"

// RateLimitEvent records one counted action for a durable, cross-instance
// sliding window. Scope separates independent limits sharing the table.
type RateLimitEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Scope     string    `gorm:"size:32;not null;index:idx_rate_limit_scope_key_time,priority:1"`
	Key       string    `gorm:"column:subject;size:64;not null;index:idx_rate_limit_scope_key_time,priority:2"`
	CreatedAt time.Time `gorm:"not null;index:idx_rate_limit_scope_key_time,priority:3"`
}

func (RateLimitEvent) TableName() string {
	return "rate_limit_events"
}

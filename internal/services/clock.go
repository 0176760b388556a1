package services

import "time"

// utcNow is the default clock for every service. Stored timestamps are UTC
// so that SQLite's text comparison orders them correctly.
func utcNow() time.Time {
	return time.Now().UTC()
}

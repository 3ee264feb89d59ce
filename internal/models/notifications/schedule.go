package models

import "time"

// Schedule is one recurring notification slot for one user. A slot is due
// when it is active and last_sent_at is older than its interval (or null).
type Schedule struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Label           string     `json:"label" db:"label"`
	IntervalMinutes int        `json:"interval_minutes" db:"interval_minutes"`
	Active          bool       `json:"active" db:"active"`
	LastSentAt      *time.Time `json:"last_sent_at,omitempty" db:"last_sent_at"`
}

// ScheduleEntry is the read-only snapshot of a due slot handed to the
// dispatch pipeline for one run.
type ScheduleEntry struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Label  string `json:"label"`
}

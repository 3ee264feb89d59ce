package models

import "time"

// DeliveryLog is one append-only audit record of one dispatch attempt,
// written for every processed schedule entry regardless of outcome.
type DeliveryLog struct {
	ID               string                 `json:"id" db:"id"`
	UserID           string                 `json:"user_id" db:"user_id"`
	ScheduleLabel    string                 `json:"schedule_label" db:"schedule_label"`
	Token            string                 `json:"token" db:"token"`
	Title            string                 `json:"title" db:"title"`
	Body             string                 `json:"body" db:"body"`
	Payload          map[string]string      `json:"payload" db:"payload"`
	ProviderResponse map[string]interface{} `json:"provider_response" db:"provider_response"`
	Status           Status                 `json:"status" db:"status"`
	Error            string                 `json:"error,omitempty" db:"error"`
	CreatedAt        time.Time              `json:"created_at" db:"created_at"`
}

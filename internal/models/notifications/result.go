package models

// Status is the closed set of per-entry dispatch outcomes.
type Status string

const (
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusNoToken   Status = "no_token"
	StatusBadToken  Status = "bad_token"
	StatusNoProfile Status = "no_profile"
)

// EntryResult is the outcome of processing one due schedule entry.
type EntryResult struct {
	ScheduleID string `json:"schedule_id"`
	UserID     string `json:"user_id"`
	Label      string `json:"label"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates one pipeline run.
type Summary struct {
	Due     int           `json:"due"`
	Results []EntryResult `json:"results"`
}

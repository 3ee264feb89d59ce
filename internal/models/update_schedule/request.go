package models

type UpdateScheduleRequest struct {
	Label           string `json:"label" binding:"required"`
	IntervalMinutes int    `json:"interval_minutes" binding:"required,min=15"`
	Active          *bool  `json:"active"`
}

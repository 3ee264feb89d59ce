package models

import "time"

// Profile describes the persona the companion writes as, plus what it knows
// about the person it writes to. Read-only from the pipeline's perspective.
type Profile struct {
	UserID             string    `json:"user_id" db:"user_id"`
	DisplayName        string    `json:"display_name" db:"display_name"`
	RecipientName      string    `json:"recipient_name" db:"recipient_name"`
	Tone               string    `json:"tone" db:"tone"`
	RelationshipStatus string    `json:"relationship_status" db:"relationship_status"`
	SpecialWords       []string  `json:"special_words" db:"special_words"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

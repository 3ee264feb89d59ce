package models

type UpdateProfileRequest struct {
	DisplayName        string   `json:"display_name"`
	RecipientName      string   `json:"recipient_name"`
	Tone               string   `json:"tone"`
	RelationshipStatus string   `json:"relationship_status"`
	SpecialWords       []string `json:"special_words"`
}

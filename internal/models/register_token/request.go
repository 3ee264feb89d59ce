package models

type RegisterTokenRequest struct {
	ExpoPushToken string `json:"expo_push_token" binding:"required"`
	Platform      string `json:"platform" binding:"required"`
}

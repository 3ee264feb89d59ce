package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"io.winapps.heartline/internal/expo"
	notificationsmodels "io.winapps.heartline/internal/models/notifications"
	registertokenmodels "io.winapps.heartline/internal/models/register_token"
)

// RegisterPushToken handles registering user push tokens
func (ns *NotificationsHandler) RegisterPushToken(c *gin.Context) {
	var req registertokenmodels.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !expo.IsLikelyExpoToken(req.ExpoPushToken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expo_push_token does not look like an Expo push token"})
		return
	}

	token := &notificationsmodels.PushToken{
		UserID:        uid.(string),
		ExpoPushToken: req.ExpoPushToken,
		Platform:      req.Platform,
		UpdatedAt:     time.Now(),
		Active:        true,
	}

	id, err := ns.tokens.Upsert(c.Request.Context(), token)
	if err != nil {
		ns.logError(c, err, "failed to save push token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token registered successfully",
		"id":      id,
	})
}

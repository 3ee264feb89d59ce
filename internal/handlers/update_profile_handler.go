package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
	updateprofilemodels "io.winapps.heartline/internal/models/update_profile"
)

const maxSpecialWords = 5

// UpdateProfile handles upserting the caller's persona profile
func (ns *NotificationsHandler) UpdateProfile(c *gin.Context) {
	var req updateprofilemodels.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	words := make([]string, 0, len(req.SpecialWords))
	for _, w := range req.SpecialWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
		if len(words) == maxSpecialWords {
			break
		}
	}

	profile := &notificationsmodels.Profile{
		UserID:             uid.(string),
		DisplayName:        strings.TrimSpace(req.DisplayName),
		RecipientName:      strings.TrimSpace(req.RecipientName),
		Tone:               strings.TrimSpace(req.Tone),
		RelationshipStatus: strings.TrimSpace(req.RelationshipStatus),
		SpecialWords:       words,
	}

	if err := ns.profiles.Upsert(c.Request.Context(), profile); err != nil {
		ns.logError(c, err, "failed to save profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

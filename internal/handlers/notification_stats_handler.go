package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNotificationStats returns per-status delivery counts for the caller
// over the last 7 days.
func (ns *NotificationsHandler) GetNotificationStats(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	counts, err := ns.logs.StatusCounts(c.Request.Context(), uid.(string), 7)
	if err != nil {
		ns.logError(c, err, "failed to load delivery stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"window_days": 7,
		"total":       total,
		"by_status":   counts,
	})
}

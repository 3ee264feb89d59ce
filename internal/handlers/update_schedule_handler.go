package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	updateschedulemodels "io.winapps.heartline/internal/models/update_schedule"
)

// UpdateSchedule handles upserting one of the caller's notification slots
func (ns *NotificationsHandler) UpdateSchedule(c *gin.Context) {
	var req updateschedulemodels.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	id, err := ns.schedules.Upsert(c.Request.Context(), uid.(string), req.Label, req.IntervalMinutes, active)
	if err != nil {
		ns.logError(c, err, "failed to save schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Schedule updated successfully",
		"id":      id,
	})
}

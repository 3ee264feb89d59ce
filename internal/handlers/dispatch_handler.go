package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.heartline/internal/dispatch"
)

// Dispatch triggers one pipeline run. The caller is a scheduler or operator,
// not an end user: authentication is a shared secret header, and individual
// entry failures still produce a 200 with the per-entry results.
func (ns *NotificationsHandler) Dispatch(c *gin.Context) {
	if ns.secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "dispatch not configured",
			"details": "DISPATCH_SECRET is not set",
		})
		return
	}
	provided := c.GetHeader("X-Dispatch-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(ns.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid dispatch secret"})
		return
	}

	summary, err := ns.runner.Run(c.Request.Context())
	if errors.Is(err, dispatch.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "a dispatch run is already in progress"})
		return
	}
	if err != nil {
		ns.logError(c, err, "dispatch run failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "dispatch run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"due":     summary.Due,
		"results": summary.Results,
	})
}

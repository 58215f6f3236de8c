package handlers

import (
	"net/http"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the last dependency probe.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": statusText(code), "dependencies": status})
}

func statusText(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

package middleware

import (
	"strconv"
	"time"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request latency by route template.
func MetricsMiddleware(m *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

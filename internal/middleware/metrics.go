package middleware

import (
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per matched route.
func Metrics() gin.HandlerFunc {
	metrics.Register()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		metrics.RequestLatency.WithLabelValues(route, c.Request.Method, status).
			Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogserver/internal/metrics"
)

// CollectMetrics records a counter and latency histogram sample per request,
// labeled by route template rather than raw path to keep cardinality bounded.
func CollectMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		metrics.RequestLatency.WithLabelValues(route, c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"blogserver/internal/utils"
)

// LogRequest logs one line per request with method, path, status and latency.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		traceId, _ := c.Value(utils.TraceIdKey.String()).(string)
		log.WithFields(log.Fields{
			"traceId": traceId,
			"service": utils.ExtractServiceName(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("Request handled")
	}
}

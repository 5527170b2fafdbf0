package middleware

import (
	"github.com/gin-gonic/gin"

	"blogserver/internal/utils"
)

// InjectTrace attaches a trace id to the request context so that every log
// line of the request can be correlated.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader("X-Trace-Id")
		if traceId == "" {
			traceId = utils.GenerateTraceId()
		}

		c.Set(utils.TraceIdKey.String(), traceId)
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}

package middleware

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizePath strips markup from the request path before routing so that
// path parameters never carry active content into responses or logs.
func SanitizePath() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		sanitized := policy.Sanitize(c.Request.URL.Path)
		if unescaped, err := url.PathUnescape(sanitized); err == nil {
			sanitized = unescaped
		}

		c.Request.URL.Path = sanitized
		c.Next()
	}
}

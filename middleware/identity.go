package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CallerHeader = "X-User-ID"
	callerKey    = "caller_id"
)

// CallerIdentity reads the authenticated user id forwarded by the auth layer.
// Requests without one carry user id 0 and fail ownership checks.
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(CallerHeader))
		if raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				c.Set(callerKey, uint(id))
			}
		}
		c.Next()
	}
}

// CallerID returns the user id set by CallerIdentity, or 0.
func CallerID(c *gin.Context) uint {
	return c.GetUint(callerKey)
}

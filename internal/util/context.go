package util

import (
	"github.com/gin-gonic/gin"
)

// IPMiddleware extracts client IP and stores it in the context
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		c.Set("client_ip", c.ClientIP())
		c.Next()
	}
}

// UserIDHeader carries the authenticated caller's user ID. Session
// handling lives in the surrounding application; this service trusts the
// header set by the fronting auth layer.
const UserIDHeader = "X-User-ID"

// GetUserID extracts the calling user's ID from the request.
func GetUserID(c *gin.Context) string {
	return c.GetHeader(UserIDHeader)
}

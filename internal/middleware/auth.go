package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAuth validates service-to-service calls via the X-Internal-API-Key
// header. An empty expected key means the service was misconfigured; every
// request is then rejected with a 500 rather than silently running open.
func InternalAuth(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: internal API key not set",
			})
		}
	}
	expected := []byte(apiKey)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader("X-Internal-API-Key"))
		// Constant-time compare to prevent timing attacks
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

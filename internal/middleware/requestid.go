package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header used to propagate request IDs between services.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a request ID to every request. An incoming ID from a
// trusted caller is reused, otherwise a fresh UUID is generated. The ID is
// echoed on the response and stored in the gin context for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

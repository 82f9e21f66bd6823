package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "request_id"
	// RequestIDHeader is the HTTP header name for the request ID
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestID tags each request with an ID, reusing one supplied by an
// upstream proxy when it looks sane, and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns an empty string if not found.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

package middleware

import (
	"time"

	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/gin-gonic/gin"
)

// LoggerKey is the context key for the request-scoped logger.
const LoggerKey = "logger"

// Logger creates a middleware that logs HTTP requests using structured logging.
// Handlers retrieve the request-scoped child logger with GetLogger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		if len(c.Request.URL.RawQuery) > 0 {
			fields["query"] = c.Request.URL.RawQuery
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID.String()
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= 400:
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger retrieves the logger from the Gin context.
// Returns nil if not found.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(LoggerKey); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}

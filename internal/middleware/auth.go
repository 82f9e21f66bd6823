package middleware

import (
	"net/http"
	"strings"

	"github.com/Vroy4298/land-tax-system/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey = "user_id"

const bearerPrefix = "Bearer "

// Authenticate requires a valid bearer token. On success the user ID is
// stored in the context and attached to the request logger.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			abortWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Missing bearer token")
			return
		}

		userID, _, err := tokens.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Rejected token", map[string]interface{}{
					"path":   c.Request.URL.Path,
					"reason": err.Error(),
				})
			}
			abortWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		if log := GetLogger(c); log != nil {
			c.Set(LoggerKey, log.WithUserID(userID.String()))
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user's ID, if any.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

package errors

import (
	"net/http"

	"github.com/Vroy4298/land-tax-system/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrUnauthorized       = middleware.ErrCodeUnauthorized
	ErrConflict           = "CONFLICT"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs a warning through the request logger and writes the envelope.
func respond(c *gin.Context, status int, code, logMsg, message string, details map[string]interface{}) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		fields := map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		log.Warn(logMsg, fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
// Records owned by another user are reported the same way.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, "Resource not found", message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, "Bad request", message, details)
}

// Unauthorized returns a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrUnauthorized, "Unauthorized", message, nil)
}

// Conflict returns a 409 Conflict error response, used for duplicate
// accounts and for paying a record that is no longer pending.
func Conflict(c *gin.Context, message string) {
	respond(c, http.StatusConflict, ErrConflict, "Conflict", message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged with full context; the client only sees message.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrInternalServer,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation error",
		"Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "len":
		return "Must have length of " + err.Param()
	case "e164":
		return "Must be a phone number in international format"
	case "oneof":
		return "Must be one of: " + err.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	apierrors "github.com/Vroy4298/land-tax-system/internal/errors"
	"github.com/Vroy4298/land-tax-system/internal/middleware"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/payment"
	"github.com/Vroy4298/land-tax-system/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PropertyHandler handles the owner-scoped property endpoints.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// PropertyRequest is the body of create and update requests. Contact and
// address fields are validated; assessment fields are accepted as sent
// and normalized by the calculator.
type PropertyRequest struct {
	assessment.RawInput
	OwnerName  string `json:"ownerName" binding:"required,max=200"`
	OwnerPhone string `json:"ownerPhone" binding:"max=32"`
	OwnerEmail string `json:"ownerEmail" binding:"omitempty,email"`
	Address    string `json:"address" binding:"required,max=500"`
}

func (r PropertyRequest) toInput() services.PropertyInput {
	return services.PropertyInput{
		OwnerName:  r.OwnerName,
		OwnerPhone: r.OwnerPhone,
		OwnerEmail: r.OwnerEmail,
		Address:    r.Address,
		Assessment: r.RawInput,
	}
}

// PropertyResponse wraps a single record.
type PropertyResponse struct {
	Property *models.Property `json:"property"`
	Warnings []string         `json:"warnings,omitempty"`
}

// PropertyListResponse wraps the owner's records.
type PropertyListResponse struct {
	Properties []models.Property `json:"properties"`
	Count      int               `json:"count"`
}

// PaymentResponse wraps a payment receipt.
type PaymentResponse struct {
	Receipt *payment.Receipt `json:"receipt"`
	Message string           `json:"message"`
}

// bindJSON binds and validates a request body, writing the error response
// itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Malformed request body", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// requireUser returns the authenticated user's ID.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
	}
	return userID, ok
}

func parsePropertyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid property ID", map[string]interface{}{
			"id": c.Param("id"),
		})
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service sentinels to responses.
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrAlreadyPaid):
		apierrors.Conflict(c, "Property tax has already been paid")
	default:
		apierrors.InternalServerError(c, fallback, err)
	}
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	props, err := h.service.List(c.Request.Context(), owner)
	if err != nil {
		writeServiceError(c, err, "Failed to list properties")
		return
	}
	if props == nil {
		props = []models.Property{}
	}

	c.JSON(http.StatusOK, PropertyListResponse{Properties: props, Count: len(props)})
}

// Summary handles GET /api/v1/properties/summary.
func (h *PropertyHandler) Summary(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), owner)
	if err != nil {
		writeServiceError(c, err, "Failed to summarise properties")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	var req PropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), owner, req.toInput())
	if err != nil {
		writeServiceError(c, err, "Failed to create property")
		return
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: result.Property, Warnings: result.Warnings})
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), owner, id)
	if err != nil {
		writeServiceError(c, err, "Failed to load property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: p})
}

// Update handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) Update(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}
	var req PropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Update(c.Request.Context(), owner, id, req.toInput())
	if err != nil {
		writeServiceError(c, err, "Failed to update property")
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: result.Property, Warnings: result.Warnings})
}

// Delete handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), owner, id); err != nil {
		writeServiceError(c, err, "Failed to delete property")
		return
	}

	c.Status(http.StatusNoContent)
}

// Pay handles POST /api/v1/properties/:id/pay.
func (h *PropertyHandler) Pay(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parsePropertyID(c)
	if !ok {
		return
	}

	receipt, err := h.service.Pay(c.Request.Context(), owner, id)
	if err != nil {
		writeServiceError(c, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Receipt: receipt, Message: "Payment successful"})
}

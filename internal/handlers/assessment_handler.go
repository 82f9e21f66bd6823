package handlers

import (
	"net/http"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/Vroy4298/land-tax-system/internal/services"
	"github.com/gin-gonic/gin"
)

// AssessmentHandler serves the live tax preview used while a form is
// being filled in.
type AssessmentHandler struct {
	service services.PropertyService
}

// NewAssessmentHandler creates a new AssessmentHandler instance.
func NewAssessmentHandler(service services.PropertyService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

// Preview handles POST /api/v1/assessments/preview.
// Nothing is stored, and any well-formed JSON object yields an assessment.
func (h *AssessmentHandler) Preview(c *gin.Context) {
	var raw assessment.RawInput
	if !bindJSON(c, &raw) {
		return
	}

	c.JSON(http.StatusOK, h.service.Preview(raw))
}

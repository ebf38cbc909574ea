package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/response"
)

// PromoHandler handles HTTP requests for promo code operations.
type PromoHandler struct {
	service PurchaseUseCases
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service PurchaseUseCases) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers all promo routes.
func (h *PromoHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/validate-promo", h.ValidatePromo)
}

// ValidatePromo handles POST /api/validate-promo.
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req application.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	result, err := h.service.ValidatePromo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, "Failed to validate promo", err)
		return
	}

	response.OK(c, result)
}

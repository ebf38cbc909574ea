package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/response"
)

// PurchaseHandler handles HTTP requests for ticket purchases.
type PurchaseHandler struct {
	service PurchaseUseCases
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(service PurchaseUseCases) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// RegisterRoutes registers all purchase routes on the given router group.
func (h *PurchaseHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/stub-purchase", h.StubPurchase)
	r.POST("/solana-pay", h.SolanaPay)
	r.GET("/solana-pay/config", h.SolanaPayConfig)
}

// StubPurchase handles POST /api/stub-purchase
func (h *PurchaseHandler) StubPurchase(c *gin.Context) {
	var req application.StubPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	result, err := h.service.StubPurchase(c.Request.Context(), req)
	if err != nil {
		response.Error(c, "Stub purchase failed", err)
		return
	}

	response.OK(c, result)
}

// SolanaPay handles POST /api/solana-pay. Clients poll this endpoint while
// the error carries retryable=true.
func (h *PurchaseHandler) SolanaPay(c *gin.Context) {
	var req application.SolanaPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	result, err := h.service.SolanaPurchase(c.Request.Context(), req)
	if err != nil {
		response.Error(c, "Solana Pay failed", err)
		return
	}

	response.OK(c, result)
}

// SolanaPayConfig handles GET /api/solana-pay/config
func (h *PurchaseHandler) SolanaPayConfig(c *gin.Context) {
	response.OK(c, h.service.SolanaPayConfig(c.Request.Context()))
}

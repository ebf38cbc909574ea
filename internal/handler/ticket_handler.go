package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TicketsPartners/service-tickets/internal/response"
)

// TicketHandler serves a buyer's tickets.
type TicketHandler struct {
	service PurchaseUseCases
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(service PurchaseUseCases) *TicketHandler {
	return &TicketHandler{service: service}
}

// RegisterRoutes registers ticket routes.
func (h *TicketHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tickets/:userId", h.ListTickets)
}

// ListTickets handles GET /api/tickets/:userId
func (h *TicketHandler) ListTickets(c *gin.Context) {
	tickets, err := h.service.ListTickets(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, "Failed to fetch tickets", err)
		return
	}
	response.OK(c, tickets)
}

package handler

import (
	"context"

	"github.com/TicketsPartners/service-tickets/internal/application"
)

// PurchaseUseCases is the purchase surface the HTTP layer depends on.
type PurchaseUseCases interface {
	ValidatePromo(ctx context.Context, req application.ValidatePromoRequest) (*application.ValidatePromoResponse, error)
	StubPurchase(ctx context.Context, req application.StubPurchaseRequest) (*application.PurchaseResponse, error)
	SolanaPurchase(ctx context.Context, req application.SolanaPurchaseRequest) (*application.PurchaseResponse, error)
	ListTickets(ctx context.Context, userID string) ([]application.TicketDTO, error)
	SolanaPayConfig(ctx context.Context) application.SolanaPayConfigDTO
}

// EventUseCases is the catalog surface the HTTP layer depends on.
type EventUseCases interface {
	CreateEvent(ctx context.Context, req application.CreateEventRequest) (*application.CreateEventResponse, error)
	ListEvents(ctx context.Context) ([]application.EventDTO, error)
}

const msgInvalidBody = "Invalid request body"

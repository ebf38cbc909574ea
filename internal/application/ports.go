package application

import (
	"context"
	"time"
)

// TxRunner runs fn inside a database transaction carried on the context.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketIssuedMessage announces a committed ticket.
type TicketIssuedMessage struct {
	TicketID      string    `json:"ticket_id"`
	TicketCode    string    `json:"ticket_code"`
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	UserID        string    `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	FinalPrice    string    `json:"final_price"`
	PromoCode     string    `json:"promo_code,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
}

// EventCreatedMessage announces a new event to subscribers.
type EventCreatedMessage struct {
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher hands post-commit notifications to the delivery pipeline.
type Publisher interface {
	PublishTicketIssued(ctx context.Context, msg TicketIssuedMessage) error
	PublishEventCreated(ctx context.Context, msg EventCreatedMessage) error
}

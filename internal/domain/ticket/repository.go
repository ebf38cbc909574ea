package ticket

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for issued tickets. Tickets are the
// ledger from which promo usage is derived.
type Repository interface {
	// Save inserts a ticket. A duplicate ticket code or transaction signature
	// yields a Conflict domain error.
	Save(ctx context.Context, t *Ticket) error

	// CountByPromo counts tickets issued for eventID with the canonical promo code.
	CountByPromo(ctx context.Context, eventID uuid.UUID, promoCode string) (int, error)

	// ListByUser returns the user's tickets, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Ticket, error)

	// FindBySignature returns the ticket paid by the given transaction or a NotFound domain error.
	FindBySignature(ctx context.Context, signature string) (*Ticket, error)
}

package event

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the event catalog.
type Repository interface {
	// FindByID returns the event or a NotFound domain error.
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindByIDForUpdate is FindByID holding a row lock until the surrounding
	// transaction ends. Outside a transaction it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Event, error)

	// UpdatePromos replaces the event's ordered promo list.
	UpdatePromos(ctx context.Context, id uuid.UUID, promos []Promo) error

	Save(ctx context.Context, e *Event) error
	List(ctx context.Context) ([]*Event, error)
}

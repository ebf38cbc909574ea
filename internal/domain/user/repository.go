package user

import "context"

// Repository defines persistence operations for users.
type Repository interface {
	// FindByUserID returns the user or a NotFound domain error.
	FindByUserID(ctx context.Context, userID string) (*User, error)
	ListSubscribed(ctx context.Context) ([]*User, error)
	// Save inserts or updates the user keyed by its Telegram user id.
	Save(ctx context.Context, u *User) error
}

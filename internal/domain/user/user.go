package user

import (
	"fmt"
	"time"
)

// User is a Telegram identity known to the service.
type User struct {
	userID     string
	username   string
	chatID     int64
	subscribed bool
	verified   bool
	verifiedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewUser registers a user on first bot interaction. Users start verified and subscribed.
func NewUser(userID, username string, chatID int64) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if username == "" {
		username = "NoUsername"
	}
	now := time.Now().UTC()
	return &User{
		userID:     userID,
		username:   username,
		chatID:     chatID,
		subscribed: true,
		verified:   true,
		verifiedAt: &now,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a User from persistence.
func Reconstruct(userID, username string, chatID int64, subscribed, verified bool, verifiedAt *time.Time, createdAt, updatedAt time.Time) *User {
	return &User{
		userID: userID, username: username, chatID: chatID,
		subscribed: subscribed, verified: verified, verifiedAt: verifiedAt,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Subscribe opts the user into announcements, refreshing the chat destination.
func (u *User) Subscribe(chatID int64) {
	u.subscribed = true
	if chatID != 0 {
		u.chatID = chatID
	}
	u.updatedAt = time.Now().UTC()
}

// Reachable reports whether the user has a chat to deliver messages to.
func (u *User) Reachable() bool { return u.chatID != 0 }

func (u *User) UserID() string         { return u.userID }
func (u *User) Username() string       { return u.username }
func (u *User) ChatID() int64          { return u.chatID }
func (u *User) Subscribed() bool       { return u.subscribed }
func (u *User) Verified() bool         { return u.verified }
func (u *User) VerifiedAt() *time.Time { return u.verifiedAt }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }

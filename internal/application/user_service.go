package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/domain"
	userDomain "github.com/TicketsPartners/service-tickets/internal/domain/user"
)

const (
	replyWelcome    = "Вітаємо в TP TicketsPartners! Натисніть, щоб відкрити додаток:"
	replySubscribed = "Ви підписались на сповіщення!"
	referralBaseURL = "https://t.me/TPTicketsBot?start=ref_"
)

// UserService answers Telegram bot commands and keeps the user directory used
// for notifications.
type UserService struct {
	repo   userDomain.Repository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo userDomain.Repository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// HandleCommand dispatches a bot command and returns the reply text.
func (s *UserService) HandleCommand(ctx context.Context, cmd adapter.BotCommand) (string, error) {
	switch cmd.Name {
	case "start":
		return s.start(ctx, cmd)
	case "subscribe":
		return s.subscribe(ctx, cmd)
	case "referral":
		s.logger.Info("referral link requested", zap.String("user_id", cmd.UserID))
		return "Ваше реферальне посилання: " + ReferralLink(cmd.UserID), nil
	default:
		return "", nil
	}
}

// start registers the user on first contact.
func (s *UserService) start(ctx context.Context, cmd adapter.BotCommand) (string, error) {
	_, err := s.repo.FindByUserID(ctx, cmd.UserID)
	switch {
	case err == nil:
		return replyWelcome, nil
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}

	u, err := userDomain.NewUser(cmd.UserID, cmd.Username, cmd.ChatID)
	if err != nil {
		return "", err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	s.logger.Info("new user created", zap.String("user_id", u.UserID()), zap.String("username", u.Username()))
	return replyWelcome, nil
}

// subscribe opts the user into announcements, registering them if needed.
func (s *UserService) subscribe(ctx context.Context, cmd adapter.BotCommand) (string, error) {
	u, err := s.repo.FindByUserID(ctx, cmd.UserID)
	switch {
	case err == nil:
		u.Subscribe(cmd.ChatID)
	case errors.Is(err, domain.ErrNotFound):
		if u, err = userDomain.NewUser(cmd.UserID, cmd.Username, cmd.ChatID); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	s.logger.Info("user subscribed", zap.String("user_id", u.UserID()), zap.Int64("chat_id", u.ChatID()))
	return replySubscribed, nil
}

// ReferralLink returns the bot deep link that credits userID.
func ReferralLink(userID string) string {
	return referralBaseURL + userID
}

package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/domain"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	userDomain "github.com/TicketsPartners/service-tickets/internal/domain/user"
	"github.com/TicketsPartners/service-tickets/internal/metrics"
)

const sendTimeout = 10 * time.Second

// Notifier delivers best-effort Telegram messages. Failures are logged and
// never returned.
type Notifier struct {
	users  userDomain.Repository
	sender adapter.MessageSender
	logger *zap.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(users userDomain.Repository, sender adapter.MessageSender, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, sender: sender, logger: logger}
}

// Notify sends text to the chat of userID. Unknown or unreachable users are skipped.
func (n *Notifier) Notify(ctx context.Context, userID, text string) {
	u, err := n.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.NotificationsSent.WithLabelValues("skipped").Inc()
			n.logger.Debug("no user to notify", zap.String("user_id", userID))
			return
		}
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		n.logger.Error("failed to look up user for notification", zap.String("user_id", userID), zap.Error(err))
		return
	}
	n.send(ctx, u, text)
}

// Broadcast sends text to every subscribed user and returns how many were delivered.
func (n *Notifier) Broadcast(ctx context.Context, text string) int {
	users, err := n.users.ListSubscribed(ctx)
	if err != nil {
		n.logger.Error("failed to list subscribers", zap.Error(err))
		return 0
	}
	sent := 0
	for _, u := range users {
		if n.send(ctx, u, text) {
			sent++
		}
	}
	n.logger.Info("broadcast finished", zap.Int("recipients", len(users)), zap.Int("sent", sent))
	return sent
}

// TicketIssued tells the buyer their ticket code.
func (n *Notifier) TicketIssued(ctx context.Context, msg TicketIssuedMessage) {
	n.Notify(ctx, msg.UserID, TicketIssuedText(msg))
}

// EventCreated announces a new event to all subscribers.
func (n *Notifier) EventCreated(ctx context.Context, msg EventCreatedMessage) {
	n.Broadcast(ctx, EventCreatedText(msg))
}

func (n *Notifier) send(ctx context.Context, u *userDomain.User, text string) bool {
	if !u.Reachable() {
		metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return false
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, u.ChatID(), text); err != nil {
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		n.logger.Warn("failed to send notification",
			zap.String("user_id", u.UserID()),
			zap.Int64("chat_id", u.ChatID()),
			zap.Error(err),
		)
		return false
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	return true
}

// TicketIssuedText renders the purchase confirmation for msg.
func TicketIssuedText(msg TicketIssuedMessage) string {
	if msg.PaymentMethod == string(payment.MethodSolanaPay) {
		return fmt.Sprintf("Ви купили квиток на \"%s\" через Solana Pay! Код квитка: %s", msg.EventName, msg.TicketCode)
	}
	return fmt.Sprintf("Ви купили квиток на \"%s\"! Код квитка: %s", msg.EventName, msg.TicketCode)
}

// EventCreatedText renders the new-event announcement for msg.
func EventCreatedText(msg EventCreatedMessage) string {
	return fmt.Sprintf("Новий захід \"%s\" створено!", msg.Name)
}

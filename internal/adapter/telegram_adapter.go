package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender delivers a text message to a Telegram chat.
type MessageSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// BotCommand is an incoming slash command from a Telegram chat.
type BotCommand struct {
	Name     string
	UserID   string
	Username string
	ChatID   int64
}

// CommandHandler answers a bot command; a non-empty reply is sent back to the chat.
type CommandHandler func(ctx context.Context, cmd BotCommand) (reply string, err error)

const (
	// telegramRequestTimeout bounds every Bot API call.
	telegramRequestTimeout = 10 * time.Second
	// pollTimeout is the getUpdates long-poll window; it must stay below telegramRequestTimeout.
	pollTimeout = 5
)

// TelegramAdapter talks to the Telegram Bot API.
type TelegramAdapter struct {
	bot    *tgbotapi.BotAPI
	appURL string
	logger *zap.Logger
}

// NewTelegramAdapter authenticates the bot token against the Bot API.
func NewTelegramAdapter(token, appURL string, logger *zap.Logger) (*TelegramAdapter, error) {
	return newTelegramAdapter(token, tgbotapi.APIEndpoint, &http.Client{Timeout: telegramRequestTimeout}, appURL, logger)
}

func newTelegramAdapter(token, endpoint string, client *http.Client, appURL string, logger *zap.Logger) (*TelegramAdapter, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("bot", bot.Self.UserName))
	return &TelegramAdapter{bot: bot, appURL: appURL, logger: logger}, nil
}

// Send posts a plain text message. It returns when ctx is done even if the
// Bot API call is still in flight; the HTTP client timeout ends that call.
func (a *TelegramAdapter) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		_, err := a.bot.Send(tgbotapi.NewMessage(chatID, text))
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("telegram send to %d: %w", chatID, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send to %d: %w", chatID, err)
		}
		return nil
	}
}

// Listen long-polls for updates and dispatches commands until ctx is cancelled.
func (a *TelegramAdapter) Listen(ctx context.Context, handle CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() || msg.From == nil {
				continue
			}
			cmd := BotCommand{
				Name:     msg.Command(),
				UserID:   strconv.FormatInt(msg.From.ID, 10),
				Username: msg.From.UserName,
				ChatID:   msg.Chat.ID,
			}
			reply, err := handle(ctx, cmd)
			if err != nil {
				a.logger.Error("bot command failed", zap.String("command", cmd.Name), zap.String("user_id", cmd.UserID), zap.Error(err))
				reply = "Помилка. Спробуйте ще раз."
			}
			if reply == "" {
				continue
			}
			out := tgbotapi.NewMessage(msg.Chat.ID, reply)
			if cmd.Name == "start" && a.appURL != "" {
				out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
					tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Відкрити додаток", a.appURL)),
				)
			}
			if _, err := a.bot.Send(out); err != nil {
				a.logger.Error("bot reply failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
			}
		}
	}
}

// MockTelegramAdapter logs messages instead of delivering them. Used when no bot token is configured.
type MockTelegramAdapter struct {
	logger *zap.Logger
}

// NewMockTelegramAdapter creates a logging MessageSender.
func NewMockTelegramAdapter(logger *zap.Logger) *MockTelegramAdapter {
	return &MockTelegramAdapter{logger: logger}
}

// Send logs the message.
func (m *MockTelegramAdapter) Send(_ context.Context, chatID int64, text string) error {
	m.logger.Info("[MOCK TELEGRAM] message sent",
		zap.Int64("chat_id", chatID),
		zap.String("text", text),
	)
	return nil
}

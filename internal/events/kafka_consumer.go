package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/kafka"
)

// NotificationConsumer listens to ticket events and sends Telegram notifications.
type NotificationConsumer struct {
	consumer *kafka.Consumer
	handler  NotificationHandler
	logger   *zap.Logger
}

// NewNotificationConsumer creates a new consumer for ticket events.
func NewNotificationConsumer(
	brokers []string,
	groupID string,
	handler NotificationHandler,
	logger *zap.Logger,
) *NotificationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicTicketEvents, logger)
	return &NotificationConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming ticket events. It blocks until the context is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
// Notifications are best-effort, so only malformed messages return an error.
func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from ticket topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received ticket event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, TicketIssued):
		var data application.TicketIssuedMessage
		if err := cloudEvent.ParseData(&data); err != nil {
			c.logger.Error("failed to parse TicketIssued data", zap.Error(err))
			return err
		}
		c.handler.TicketIssued(ctx, data)
		return nil

	case strings.EqualFold(cloudEvent.Type, EventCreated):
		var data application.EventCreatedMessage
		if err := cloudEvent.ParseData(&data); err != nil {
			c.logger.Error("failed to parse EventCreated data", zap.Error(err))
			return err
		}
		c.handler.EventCreated(ctx, data)
		return nil

	default:
		c.logger.Debug("ignoring unhandled ticket event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// Close closes the underlying Kafka consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}

package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/kafka"
)

// EventProducer publishes a CloudEvent to a topic.
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// NotificationHandler delivers notifications for published messages.
type NotificationHandler interface {
	TicketIssued(ctx context.Context, msg application.TicketIssuedMessage)
	EventCreated(ctx context.Context, msg application.EventCreatedMessage)
}

// KafkaPublisher implements application.Publisher over Kafka.
type KafkaPublisher struct {
	producer EventProducer
	topic    string
}

// NewKafkaPublisher creates a publisher writing to TopicTicketEvents.
func NewKafkaPublisher(producer EventProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: TopicTicketEvents}
}

// PublishTicketIssued publishes a ticket.issued event keyed by event id.
func (p *KafkaPublisher) PublishTicketIssued(ctx context.Context, msg application.TicketIssuedMessage) error {
	return p.publish(ctx, TicketIssued, msg.EventID, msg)
}

// PublishEventCreated publishes an event.created event keyed by event id.
func (p *KafkaPublisher) PublishEventCreated(ctx context.Context, msg application.EventCreatedMessage) error {
	return p.publish(ctx, EventCreated, msg.EventID, msg)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(SourceTicketsService, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = subject
	if err := p.producer.PublishEvent(ctx, p.topic, ce); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// InlineDispatcher implements application.Publisher without a broker by
// notifying on a background goroutine.
type InlineDispatcher struct {
	handler NotificationHandler
	logger  *zap.Logger
}

// NewInlineDispatcher creates a dispatcher delivering through handler.
func NewInlineDispatcher(handler NotificationHandler, logger *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{handler: handler, logger: logger}
}

// PublishTicketIssued notifies the buyer asynchronously.
func (d *InlineDispatcher) PublishTicketIssued(ctx context.Context, msg application.TicketIssuedMessage) error {
	d.logger.Debug("dispatching inline",
		zap.String("type", TicketIssued),
		zap.String("ticket_id", msg.TicketID),
	)
	ctx = context.WithoutCancel(ctx)
	go d.handler.TicketIssued(ctx, msg)
	return nil
}

// PublishEventCreated broadcasts the announcement asynchronously.
func (d *InlineDispatcher) PublishEventCreated(ctx context.Context, msg application.EventCreatedMessage) error {
	d.logger.Debug("dispatching inline",
		zap.String("type", EventCreated),
		zap.String("event_id", msg.EventID),
	)
	ctx = context.WithoutCancel(ctx)
	go d.handler.EventCreated(ctx, msg)
	return nil
}

package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
	"github.com/TicketsPartners/service-tickets/internal/metrics"
)

// PromoValidation is an accepted promo code with its current usage.
type PromoValidation struct {
	Promo    eventDomain.Promo
	Discount decimal.Decimal
	Used     int
}

// PromoLedger validates promo codes and records redemptions. Issued tickets are
// the source of truth for usage.
type PromoLedger struct {
	events  eventDomain.Repository
	tickets ticketDomain.Repository
	logger  *zap.Logger
}

// NewPromoLedger creates a new PromoLedger.
func NewPromoLedger(events eventDomain.Repository, tickets ticketDomain.Repository, logger *zap.Logger) *PromoLedger {
	return &PromoLedger{events: events, tickets: tickets, logger: logger}
}

// Validate loads the event and checks code against it.
func (l *PromoLedger) Validate(ctx context.Context, eventID uuid.UUID, code string) (*PromoValidation, error) {
	ev, err := l.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return l.Check(ctx, ev, code)
}

// Check validates code against an already loaded event.
func (l *PromoLedger) Check(ctx context.Context, ev *eventDomain.Event, code string) (*PromoValidation, error) {
	promo, ok := ev.FindPromo(code)
	if !ok {
		return nil, l.reject("not_found", ev, code, msgInvalidPromo)
	}
	if !promo.HasValidDiscount() {
		return nil, l.reject("bad_discount", ev, code, msgInvalidDiscount)
	}

	used, err := l.tickets.CountByPromo(ctx, ev.ID(), promo.Code())
	if err != nil {
		return nil, fmt.Errorf("count promo usage: %w", err)
	}
	if promo.LimitReached(used) {
		return nil, l.reject("limit_reached", ev, code, msgPromoLimitReached)
	}

	return &PromoValidation{Promo: promo, Discount: promo.Discount(), Used: used}, nil
}

// Redeem rewrites the promo's used count from the ticket ledger. It must run in
// the issuing transaction after the ticket row is written.
func (l *PromoLedger) Redeem(ctx context.Context, ev *eventDomain.Event, code string) error {
	promo, ok := ev.FindPromo(code)
	if !ok {
		return domain.NewPromoError(msgInvalidPromo)
	}
	used, err := l.tickets.CountByPromo(ctx, ev.ID(), promo.Code())
	if err != nil {
		return fmt.Errorf("count promo usage: %w", err)
	}
	if err := ev.SetPromoUsage(promo.Code(), used); err != nil {
		return domain.NewPromoError(msgPromoLimitReached)
	}
	if err := l.events.UpdatePromos(ctx, ev.ID(), ev.Promos()); err != nil {
		return fmt.Errorf("update promo usage: %w", err)
	}

	l.logger.Info("promo redeemed",
		zap.String("event_id", ev.ID().String()),
		zap.String("promo_code", promo.Code()),
		zap.Int("used", used),
		zap.Int("limit", promo.UsageLimit()),
	)
	return nil
}

func (l *PromoLedger) reject(reason string, ev *eventDomain.Event, code, message string) error {
	metrics.PromoRejections.WithLabelValues(reason).Inc()
	l.logger.Warn("promo rejected",
		zap.String("event_id", ev.ID().String()),
		zap.String("promo_code", code),
		zap.String("reason", reason),
	)
	return domain.NewPromoError(message)
}

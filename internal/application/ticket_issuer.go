package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
	"github.com/TicketsPartners/service-tickets/internal/metrics"
)

const maxIssueAttempts = 3

// IssueRequest describes a verified purchase.
type IssueRequest struct {
	EventID    uuid.UUID
	UserID     string
	Method     payment.Method
	FinalPrice decimal.Decimal
	PromoCode  string // as typed by the buyer; empty for none
	Signature  string // on-chain proof; empty for the stub method
}

// IssueResult is the ticket returned to the buyer. Existing is set when the
// signature had already paid for this ticket.
type IssueResult struct {
	Ticket   *ticketDomain.Ticket
	Existing bool
}

// TicketIssuer persists tickets and redeems promos atomically.
type TicketIssuer struct {
	tx        TxRunner
	events    eventDomain.Repository
	tickets   ticketDomain.Repository
	ledger    *PromoLedger
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewTicketIssuer creates a new TicketIssuer.
func NewTicketIssuer(
	tx TxRunner,
	events eventDomain.Repository,
	tickets ticketDomain.Repository,
	ledger *PromoLedger,
	publisher Publisher,
	logger *zap.Logger,
) *TicketIssuer {
	return &TicketIssuer{
		tx:        tx,
		events:    events,
		tickets:   tickets,
		ledger:    ledger,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Issue mints and persists a ticket. The promo limit is rechecked under the
// event row lock, so concurrent buyers cannot exceed it. Duplicate-key
// conflicts retry the whole transaction. The issued event is published on a
// context detached from ctx cancellation once the ticket is committed.
func (i *TicketIssuer) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		result, err := i.issueOnce(ctx, req)
		if err == nil {
			if !result.Existing {
				metrics.TicketsIssued.WithLabelValues(string(req.Method)).Inc()
				i.publish(context.WithoutCancel(ctx), result.Ticket)
			}
			return result, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, err
		}
		lastErr = err
		i.logger.Warn("ticket insert conflict, retrying",
			zap.String("event_id", req.EventID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

func (i *TicketIssuer) issueOnce(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	var result *IssueResult
	err := i.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.Signature != "" {
			prior, err := i.tickets.FindBySignature(ctx, req.Signature)
			switch {
			case err == nil:
				if prior.UserID() != req.UserID || prior.EventID() != req.EventID {
					return domain.NewConflictError(msgSignatureUsed)
				}
				result = &IssueResult{Ticket: prior, Existing: true}
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}

		ev, err := i.events.FindByIDForUpdate(ctx, req.EventID)
		if err != nil {
			return err
		}

		var promoCode string
		if req.PromoCode != "" {
			v, err := i.ledger.Check(ctx, ev, req.PromoCode)
			if err != nil {
				return err
			}
			promoCode = v.Promo.Code()
		}

		t, err := ticketDomain.NewTicket(ev.ID(), req.UserID, req.Method, req.FinalPrice,
			ticketDomain.SnapshotOf(ev), promoCode, req.Signature, i.now())
		if err != nil {
			return domain.NewValidationError(err.Error())
		}
		if err := i.tickets.Save(ctx, t); err != nil {
			return err
		}
		if promoCode != "" {
			if err := i.ledger.Redeem(ctx, ev, promoCode); err != nil {
				return err
			}
		}

		result = &IssueResult{Ticket: t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *TicketIssuer) publish(ctx context.Context, t *ticketDomain.Ticket) {
	i.logger.Info("ticket issued",
		zap.String("ticket_id", t.ID().String()),
		zap.String("ticket_code", t.Code()),
		zap.String("event_id", t.EventID().String()),
		zap.String("user_id", t.UserID()),
		zap.String("payment_method", string(t.Method())),
	)
	msg := TicketIssuedMessage{
		TicketID:      t.ID().String(),
		TicketCode:    t.Code(),
		EventID:       t.EventID().String(),
		EventName:     t.Snapshot().EventName,
		UserID:        t.UserID(),
		PaymentMethod: string(t.Method()),
		FinalPrice:    t.FinalPrice().String(),
		PromoCode:     t.PromoCode(),
		IssuedAt:      t.CreatedAt(),
	}
	if err := i.publisher.PublishTicketIssued(ctx, msg); err != nil {
		i.logger.Error("failed to publish ticket issued",
			zap.String("ticket_id", msg.TicketID),
			zap.Error(err),
		)
	}
}

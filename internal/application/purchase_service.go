package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
	"github.com/TicketsPartners/service-tickets/internal/metrics"
)

const (
	solanaPayExpirySeconds = 300
	solanaPayPollSeconds   = 5
)

// PurchaseService orchestrates promo validation, payment verification and
// ticket issuance.
type PurchaseService struct {
	events    eventDomain.Repository
	tickets   ticketDomain.Repository
	ledger    *PromoLedger
	verifier  *PaymentVerifier
	issuer    *TicketIssuer
	rates     RateSource
	recipient string
	quote     string
	logger    *zap.Logger
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(
	events eventDomain.Repository,
	tickets ticketDomain.Repository,
	ledger *PromoLedger,
	verifier *PaymentVerifier,
	issuer *TicketIssuer,
	rates RateSource,
	recipient, quote string,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		events:    events,
		tickets:   tickets,
		ledger:    ledger,
		verifier:  verifier,
		issuer:    issuer,
		rates:     rates,
		recipient: recipient,
		quote:     quote,
		logger:    logger,
	}
}

// ValidatePromo checks a promo code for an event without redeeming it.
func (s *PurchaseService) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (*ValidatePromoResponse, error) {
	code := strings.TrimSpace(req.PromoCode)
	if code == "" || strings.TrimSpace(req.EventID) == "" {
		return nil, domain.NewValidationError(msgMissingPromoFields)
	}
	eventID, err := parseEventID(req.EventID)
	if err != nil {
		return nil, err
	}

	v, err := s.ledger.Validate(ctx, eventID, code)
	if err != nil {
		return nil, err
	}
	return &ValidatePromoResponse{Valid: true, Discount: v.Discount.Mul(hundred).InexactFloat64()}, nil
}

// StubPurchase issues a ticket after checking the declared price only.
func (s *PurchaseService) StubPurchase(ctx context.Context, req StubPurchaseRequest) (*PurchaseResponse, error) {
	s.logger.Info("stub purchase requested",
		zap.String("event_id", req.EventID),
		zap.String("user_id", req.UserID),
		zap.String("promo_code", req.PromoCode),
	)
	resp, err := s.stubPurchase(ctx, req)
	if err != nil {
		s.rejected(payment.MethodStub, err)
		return nil, err
	}
	return resp, nil
}

func (s *PurchaseService) stubPurchase(ctx context.Context, req StubPurchaseRequest) (*PurchaseResponse, error) {
	if strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.UserID) == "" || req.FinalPrice == nil {
		return nil, domain.NewValidationError(msgMissingFields)
	}
	ev, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.PromoCode)
	if _, err := s.verifier.VerifyStub(ctx, ev, *req.FinalPrice, code); err != nil {
		return nil, err
	}

	result, err := s.issuer.Issue(ctx, IssueRequest{
		EventID:    ev.ID(),
		UserID:     strings.TrimSpace(req.UserID),
		Method:     payment.MethodStub,
		FinalPrice: *req.FinalPrice,
		PromoCode:  code,
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(result.Ticket), nil
}

// SolanaPurchase issues a ticket once the transfer tagged with req.Reference is
// confirmed, paid to the merchant and priced correctly. Not-yet-visible
// transactions yield retryable errors; clients poll until expiry.
func (s *PurchaseService) SolanaPurchase(ctx context.Context, req SolanaPurchaseRequest) (*PurchaseResponse, error) {
	s.logger.Info("solana purchase requested",
		zap.String("reference", req.Reference),
		zap.String("event_id", req.EventID),
		zap.String("user_id", req.UserID),
	)
	resp, err := s.solanaPurchase(ctx, req)
	if err != nil {
		s.rejected(payment.MethodSolanaPay, err)
		return nil, err
	}
	return resp, nil
}

func (s *PurchaseService) solanaPurchase(ctx context.Context, req SolanaPurchaseRequest) (*PurchaseResponse, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" || strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.UserID) == "" || req.FinalPrice == nil {
		return nil, domain.NewValidationError(msgMissingFields)
	}
	ev, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.PromoCode)
	if _, err := s.verifier.VerifyStub(ctx, ev, *req.FinalPrice, code); err != nil {
		return nil, err
	}

	proof, err := s.verifier.VerifyOnChain(ctx, reference, *req.FinalPrice)
	if err != nil {
		return nil, err
	}

	result, err := s.issuer.Issue(ctx, IssueRequest{
		EventID:    ev.ID(),
		UserID:     strings.TrimSpace(req.UserID),
		Method:     payment.MethodSolanaPay,
		FinalPrice: *req.FinalPrice,
		PromoCode:  code,
		Signature:  proof.Signature,
	})
	if err != nil {
		return nil, err
	}
	if result.Existing {
		s.logger.Info("signature already redeemed, returning existing ticket",
			zap.String("signature", proof.Signature),
			zap.String("ticket_code", result.Ticket.Code()),
		)
	}
	return toPurchaseResponse(result.Ticket), nil
}

// ListTickets returns the tickets of userID, newest first.
func (s *PurchaseService) ListTickets(ctx context.Context, userID string) ([]TicketDTO, error) {
	tickets, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]TicketDTO, len(tickets))
	for i, t := range tickets {
		dtos[i] = toTicketDTO(t)
	}
	return dtos, nil
}

// SolanaPayConfig returns the payment parameters the client needs to build a transfer request.
func (s *PurchaseService) SolanaPayConfig(ctx context.Context) SolanaPayConfigDTO {
	return SolanaPayConfigDTO{
		Recipient:           s.recipient,
		Currency:            s.quote,
		Rate:                s.rates.GetRate(ctx, s.quote).InexactFloat64(),
		ExpiresInSeconds:    solanaPayExpirySeconds,
		PollIntervalSeconds: solanaPayPollSeconds,
	}
}

func (s *PurchaseService) findEvent(ctx context.Context, rawID string) (*eventDomain.Event, error) {
	id, err := parseEventID(rawID)
	if err != nil {
		return nil, err
	}
	return s.events.FindByID(ctx, id)
}

func (s *PurchaseService) rejected(method payment.Method, err error) {
	reason := rejectionReason(err)
	metrics.PurchaseRejections.WithLabelValues(string(method), reason).Inc()
	if reason == "internal" {
		s.logger.Error("purchase failed", zap.String("payment_method", string(method)), zap.Error(err))
		return
	}
	s.logger.Info("purchase rejected",
		zap.String("payment_method", string(method)),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func parseEventID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.NewNotFoundError("Event", raw)
	}
	return id, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPromo):
		return "promo"
	case errors.Is(err, domain.ErrPayment):
		if domain.IsRetryable(err) {
			return "pending"
		}
		return "payment"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

func toPurchaseResponse(t *ticketDomain.Ticket) *PurchaseResponse {
	return &PurchaseResponse{Success: true, TicketID: t.ID().String(), TicketCode: t.Code()}
}

package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
)

// RateSource returns fiat units per whole coin.
type RateSource interface {
	GetRate(ctx context.Context, quote string) decimal.Decimal
}

// PriceVerification is an accepted price claim.
type PriceVerification struct {
	Discount decimal.Decimal
	Expected decimal.Decimal
	Promo    *PromoValidation
}

// OnChainVerification is a confirmed transfer matching the claim.
type OnChainVerification struct {
	Signature        string
	Lamports         int64
	ExpectedLamports int64
	Rate             decimal.Decimal
}

// PaymentVerifier checks purchase claims before a ticket is issued.
type PaymentVerifier struct {
	ledger    *PromoLedger
	chain     adapter.ChainClient
	rates     RateSource
	recipient string
	quote     string
	logger    *zap.Logger
}

// NewPaymentVerifier creates a verifier that expects transfers to recipient,
// priced in quote currency.
func NewPaymentVerifier(ledger *PromoLedger, chain adapter.ChainClient, rates RateSource, recipient, quote string, logger *zap.Logger) *PaymentVerifier {
	return &PaymentVerifier{
		ledger:    ledger,
		chain:     chain,
		rates:     rates,
		recipient: recipient,
		quote:     quote,
		logger:    logger,
	}
}

// VerifyStub checks that claimed equals the event price after the server-side
// discount of code, within PriceTolerance. An empty code means no discount.
func (v *PaymentVerifier) VerifyStub(ctx context.Context, ev *eventDomain.Event, claimed decimal.Decimal, code string) (*PriceVerification, error) {
	out := &PriceVerification{Discount: decimal.Zero}
	if code != "" {
		promo, err := v.ledger.Check(ctx, ev, code)
		if err != nil {
			return nil, err
		}
		out.Promo = promo
		out.Discount = promo.Discount
	}

	out.Expected = ev.ExpectedPrice(out.Discount)
	if !payment.WithinPriceTolerance(claimed, out.Expected) {
		v.logger.Warn("incorrect final price",
			zap.String("event_id", ev.ID().String()),
			zap.String("claimed", claimed.String()),
			zap.String("expected", out.Expected.String()),
		)
		return nil, domain.NewPromoError(msgIncorrectPrice)
	}
	return out, nil
}

// VerifyOnChain resolves reference to a confirmed transfer and checks its
// recipient and amount against claimed converted at the current rate.
func (v *PaymentVerifier) VerifyOnChain(ctx context.Context, reference string, claimed decimal.Decimal) (*OnChainVerification, error) {
	signature, err := v.chain.FindSignatureByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if signature == "" {
		v.logger.Info("transaction not found yet", zap.String("reference", reference))
		return nil, domain.NewPaymentError(msgTxNotFound, true)
	}

	tx, err := v.chain.GetParsedTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if tx == nil {
		v.logger.Info("transaction not confirmed yet", zap.String("signature", signature))
		return nil, domain.NewPaymentError(msgTxNotConfirmed, true)
	}

	transfer, ok := tx.FirstTransfer()
	if !ok {
		v.logger.Warn("no transfer instruction", zap.String("signature", signature))
		return nil, domain.NewPaymentError(msgNoTransfer, false)
	}
	if transfer.Destination != v.recipient {
		v.logger.Warn("invalid recipient",
			zap.String("signature", signature),
			zap.String("actual", transfer.Destination),
			zap.String("expected", v.recipient),
		)
		return nil, domain.NewPaymentError(msgBadRecipient, false)
	}

	rate := v.rates.GetRate(ctx, v.quote)
	expected := payment.ExpectedLamports(claimed, rate)
	actual := int64(transfer.Lamports)
	if !payment.WithinLamportTolerance(actual, expected) {
		v.logger.Warn("invalid transaction amount",
			zap.String("signature", signature),
			zap.Int64("actual", actual),
			zap.Int64("expected", expected),
			zap.String("rate", rate.String()),
		)
		return nil, domain.NewPaymentError(msgBadAmount, false)
	}

	return &OnChainVerification{
		Signature:        signature,
		Lamports:         actual,
		ExpectedLamports: expected,
		Rate:             rate,
	}, nil
}

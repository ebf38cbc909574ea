package application

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
)

const (
	testRecipient = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testSignature = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
)

type testStack struct {
	events    *fakeEventRepo
	tickets   *fakeTicketRepo
	tx        *fakeTx
	chain     *fakeChain
	publisher *fakePublisher
	ledger    *PromoLedger
	verifier  *PaymentVerifier
	issuer    *TicketIssuer
	purchases *PurchaseService
}

func newTestStack(t *testing.T, events ...*eventDomain.Event) *testStack {
	t.Helper()
	logger := zap.NewNop()
	s := &testStack{
		events:    newFakeEventRepo(events...),
		tickets:   &fakeTicketRepo{},
		tx:        &fakeTx{},
		chain:     &fakeChain{},
		publisher: &fakePublisher{},
	}
	rates := fixedRate{rate: decimal.NewFromInt(100)}
	s.ledger = NewPromoLedger(s.events, s.tickets, logger)
	s.verifier = NewPaymentVerifier(s.ledger, s.chain, rates, testRecipient, "uah", logger)
	s.issuer = NewTicketIssuer(s.tx, s.events, s.tickets, s.ledger, s.publisher, logger)
	s.purchases = NewPurchaseService(s.events, s.tickets, s.ledger, s.verifier, s.issuer, rates, testRecipient, "uah", logger)
	return s
}

// newConcert returns an event priced 500 with promo SALE10 (10%, limit 2).
func newConcert(t *testing.T, promos ...eventDomain.Promo) *eventDomain.Event {
	t.Helper()
	if len(promos) == 0 {
		p, err := eventDomain.NewPromo("SALE10", decimal.RequireFromString("0.10"), 2)
		require.NoError(t, err)
		promos = []eventDomain.Promo{p}
	}
	now := time.Now()
	ev, err := eventDomain.NewEvent("Concert", now.AddDate(0, 1, 0), "Kyiv, Palace", 500, "Live show", "music", "/images/concert.png", promos, now)
	require.NoError(t, err)
	return ev
}

func transferTx(destination string, lamports uint64) *payment.Transaction {
	return &payment.Transaction{
		Signature: testSignature,
		Slot:      1234,
		Instructions: []payment.Instruction{
			{ProgramID: "ComputeBudget111111111111111111111111111111"},
			{ProgramID: payment.SystemProgramID, Type: "transfer", Source: "payer", Destination: destination, Lamports: lamports},
		},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

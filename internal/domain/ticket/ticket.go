package ticket

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
)

// Snapshot is the event display data frozen at purchase time.
type Snapshot struct {
	EventName  string
	EventDate  string
	EventPlace string
	ImageURL   string
}

// SnapshotOf captures the display fields of e.
func SnapshotOf(e *event.Event) Snapshot {
	return Snapshot{
		EventName:  e.Name(),
		EventDate:  e.DateString(),
		EventPlace: e.Place(),
		ImageURL:   e.ImageURL(),
	}
}

// Ticket is an issued admission. It is immutable once created.
type Ticket struct {
	id          uuid.UUID
	code        string
	eventID     uuid.UUID
	userID      string
	method      payment.Method
	finalPrice  decimal.Decimal
	snapshot    Snapshot
	promoCode   string
	txSignature string
	createdAt   time.Time
}

// NewTicket mints a ticket with a fresh id and ticket code.
func NewTicket(eventID uuid.UUID, userID string, method payment.Method, finalPrice decimal.Decimal, snapshot Snapshot, promoCode, txSignature string, now time.Time) (*Ticket, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if !method.Valid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}
	code, err := NewCode(now)
	if err != nil {
		return nil, err
	}
	return &Ticket{
		id:          uuid.New(),
		code:        code,
		eventID:     eventID,
		userID:      userID,
		method:      method,
		finalPrice:  finalPrice,
		snapshot:    snapshot,
		promoCode:   promoCode,
		txSignature: txSignature,
		createdAt:   now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Ticket from persistence.
func Reconstruct(id uuid.UUID, code string, eventID uuid.UUID, userID string, method payment.Method, finalPrice decimal.Decimal, snapshot Snapshot, promoCode, txSignature string, createdAt time.Time) *Ticket {
	return &Ticket{
		id: id, code: code, eventID: eventID, userID: userID, method: method,
		finalPrice: finalPrice, snapshot: snapshot, promoCode: promoCode,
		txSignature: txSignature, createdAt: createdAt,
	}
}

const (
	codeSuffixLen = 6
	base36        = 36
)

// NewCode builds a code of the form TICKET_<epoch-ms>_<6 base36 chars>.
func NewCode(now time.Time) (string, error) {
	suffix := make([]byte, codeSuffixLen)
	max := big.NewInt(base36)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ticket code entropy: %w", err)
		}
		suffix[i] = strconv.FormatInt(n.Int64(), base36)[0]
	}
	return fmt.Sprintf("TICKET_%d_%s", now.UnixMilli(), suffix), nil
}

func (t *Ticket) ID() uuid.UUID               { return t.id }
func (t *Ticket) Code() string                { return t.code }
func (t *Ticket) EventID() uuid.UUID          { return t.eventID }
func (t *Ticket) UserID() string              { return t.userID }
func (t *Ticket) Method() payment.Method      { return t.method }
func (t *Ticket) FinalPrice() decimal.Decimal { return t.finalPrice }
func (t *Ticket) Snapshot() Snapshot          { return t.snapshot }
func (t *Ticket) PromoCode() string           { return t.promoCode }
func (t *Ticket) TxSignature() string         { return t.txSignature }
func (t *Ticket) CreatedAt() time.Time        { return t.createdAt }

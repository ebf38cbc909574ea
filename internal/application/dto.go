package application

import (
	"time"

	"github.com/shopspring/decimal"

	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
)

var hundred = decimal.NewFromInt(100)

// ValidatePromoRequest is the body of POST /api/validate-promo.
type ValidatePromoRequest struct {
	PromoCode string `json:"promoCode"`
	EventID   string `json:"eventId"`
}

// ValidatePromoResponse reports an accepted code. Discount is a percentage.
type ValidatePromoResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
}

// StubPurchaseRequest is the body of POST /api/stub-purchase.
type StubPurchaseRequest struct {
	EventID    string           `json:"eventId"`
	UserID     string           `json:"userId"`
	FinalPrice *decimal.Decimal `json:"finalPrice"`
	PromoCode  string           `json:"promoCode"`
}

// SolanaPurchaseRequest is the body of POST /api/solana-pay. The event display
// fields are accepted for compatibility; the stored event is authoritative.
type SolanaPurchaseRequest struct {
	Reference  string           `json:"reference"`
	EventID    string           `json:"eventId"`
	UserID     string           `json:"userId"`
	FinalPrice *decimal.Decimal `json:"finalPrice"`
	PromoCode  string           `json:"promoCode"`
	EventName  string           `json:"eventName"`
	EventDate  string           `json:"eventDate"`
	EventPlace string           `json:"eventPlace"`
	ImageURL   string           `json:"imageUrl"`
}

// PurchaseResponse is returned by both purchase endpoints.
type PurchaseResponse struct {
	Success    bool   `json:"success"`
	TicketID   string `json:"ticketId"`
	TicketCode string `json:"ticketCode"`
}

// TicketDTO is the API representation of an issued ticket. TicketID carries the
// ticket code for older clients.
type TicketDTO struct {
	ID                   string    `json:"id"`
	TicketID             string    `json:"ticketId"`
	TicketCode           string    `json:"ticketCode"`
	EventID              string    `json:"eventId"`
	UserID               string    `json:"userId"`
	PaymentMethod        string    `json:"paymentMethod"`
	FinalPrice           float64   `json:"finalPrice"`
	EventName            string    `json:"eventName"`
	EventDate            string    `json:"eventDate"`
	EventPlace           string    `json:"eventPlace"`
	ImageURL             string    `json:"imageUrl"`
	PromoCode            string    `json:"promoCode"`
	TransactionSignature string    `json:"transactionSignature,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// PromoDTO is the API representation of an event promo.
type PromoDTO struct {
	Code       string  `json:"code"`
	Discount   float64 `json:"discount"`
	UsageLimit int     `json:"usageLimit"`
	UsedCount  int     `json:"usedCount"`
}

// EventDTO is the API representation of an event.
type EventDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Date        string     `json:"date"`
	Place       string     `json:"place"`
	Price       int64      `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"imageUrl"`
	Promocodes  []PromoDTO `json:"promocodes"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// SolanaPayConfigDTO tells the client how to build and poll a payment.
type SolanaPayConfigDTO struct {
	Recipient           string  `json:"recipient"`
	Currency            string  `json:"currency"`
	Rate                float64 `json:"rate"`
	ExpiresInSeconds    int     `json:"expiresInSeconds"`
	PollIntervalSeconds int     `json:"pollIntervalSeconds"`
}

func toTicketDTO(t *ticketDomain.Ticket) TicketDTO {
	snap := t.Snapshot()
	return TicketDTO{
		ID:                   t.ID().String(),
		TicketID:             t.Code(),
		TicketCode:           t.Code(),
		EventID:              t.EventID().String(),
		UserID:               t.UserID(),
		PaymentMethod:        string(t.Method()),
		FinalPrice:           t.FinalPrice().InexactFloat64(),
		EventName:            snap.EventName,
		EventDate:            snap.EventDate,
		EventPlace:           snap.EventPlace,
		ImageURL:             snap.ImageURL,
		PromoCode:            t.PromoCode(),
		TransactionSignature: t.TxSignature(),
		CreatedAt:            t.CreatedAt(),
	}
}

func toEventDTO(e *eventDomain.Event) EventDTO {
	promos := e.Promos()
	list := make([]PromoDTO, len(promos))
	for i, p := range promos {
		list[i] = PromoDTO{
			Code:       p.Code(),
			Discount:   p.Discount().InexactFloat64(),
			UsageLimit: p.UsageLimit(),
			UsedCount:  p.UsedCount(),
		}
	}
	return EventDTO{
		ID:          e.ID().String(),
		Name:        e.Name(),
		Date:        e.DateString(),
		Place:       e.Place(),
		Price:       e.Price(),
		Description: e.Description(),
		Category:    e.Category(),
		ImageURL:    e.ImageURL(),
		Promocodes:  list,
		CreatedAt:   e.CreatedAt(),
	}
}

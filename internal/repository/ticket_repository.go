package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TicketsPartners/service-tickets/internal/database"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
)

// TicketModel is the GORM persistence model for the tickets table.
type TicketModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TicketCode           string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	EventID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_tickets_event_promo,priority:1"`
	UserID               string          `gorm:"type:varchar(64);not null;index"`
	PaymentMethod        string          `gorm:"type:varchar(20);not null"`
	FinalPrice           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	EventName            string          `gorm:"type:varchar(255);not null"`
	EventDate            string          `gorm:"type:varchar(10);not null"`
	EventPlace           string          `gorm:"type:varchar(255)"`
	ImageURL             string          `gorm:"type:text"`
	PromoCode            string          `gorm:"type:varchar(50);index:idx_tickets_event_promo,priority:2"`
	TransactionSignature *string         `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt            time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (TicketModel) TableName() string {
	return "tickets"
}

// GormTicketRepository is the GORM-based implementation of ticket.Repository.
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GORM-based ticket repository.
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Save inserts a ticket.
func (r *GormTicketRepository) Save(ctx context.Context, t *ticketDomain.Ticket) error {
	model := toTicketModel(t)
	if err := database.Conn(ctx, r.db).Create(&model).Error; err != nil {
		return translate(err, "Ticket", t.Code())
	}
	return nil
}

// CountByPromo counts tickets for eventID redeemed with promoCode.
func (r *GormTicketRepository) CountByPromo(ctx context.Context, eventID uuid.UUID, promoCode string) (int, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&TicketModel{}).
		Where("event_id = ? AND promo_code = ?", eventID, promoCode).
		Count(&count).Error
	return int(count), err
}

// ListByUser returns the user's tickets, newest first.
func (r *GormTicketRepository) ListByUser(ctx context.Context, userID string) ([]*ticketDomain.Ticket, error) {
	var models []TicketModel
	if err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	tickets := make([]*ticketDomain.Ticket, len(models))
	for i := range models {
		tickets[i] = toTicketDomain(&models[i])
	}
	return tickets, nil
}

// FindBySignature returns the ticket paid by signature.
func (r *GormTicketRepository) FindBySignature(ctx context.Context, signature string) (*ticketDomain.Ticket, error) {
	var model TicketModel
	if err := database.Conn(ctx, r.db).Where("transaction_signature = ?", signature).First(&model).Error; err != nil {
		return nil, translate(err, "Ticket", signature)
	}
	return toTicketDomain(&model), nil
}

func toTicketModel(t *ticketDomain.Ticket) TicketModel {
	snap := t.Snapshot()
	var sig *string
	if s := t.TxSignature(); s != "" {
		sig = &s
	}
	return TicketModel{
		ID:                   t.ID(),
		TicketCode:           t.Code(),
		EventID:              t.EventID(),
		UserID:               t.UserID(),
		PaymentMethod:        string(t.Method()),
		FinalPrice:           t.FinalPrice(),
		EventName:            snap.EventName,
		EventDate:            snap.EventDate,
		EventPlace:           snap.EventPlace,
		ImageURL:             snap.ImageURL,
		PromoCode:            t.PromoCode(),
		TransactionSignature: sig,
		CreatedAt:            t.CreatedAt(),
	}
}

func toTicketDomain(m *TicketModel) *ticketDomain.Ticket {
	var sig string
	if m.TransactionSignature != nil {
		sig = *m.TransactionSignature
	}
	return ticketDomain.Reconstruct(
		m.ID, m.TicketCode, m.EventID, m.UserID,
		payment.Method(m.PaymentMethod), m.FinalPrice,
		ticketDomain.Snapshot{
			EventName:  m.EventName,
			EventDate:  m.EventDate,
			EventPlace: m.EventPlace,
			ImageURL:   m.ImageURL,
		},
		m.PromoCode, sig, m.CreatedAt,
	)
}

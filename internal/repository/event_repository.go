package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TicketsPartners/service-tickets/internal/database"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
)

// EventModel is the GORM model for the events table.
type EventModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Date        time.Time `gorm:"type:date;not null;index"`
	Place       string    `gorm:"type:varchar(255);not null"`
	Price       int64     `gorm:"not null"`
	Description string    `gorm:"type:text"`
	Category    string    `gorm:"type:varchar(100);not null"`
	ImageURL    string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (EventModel) TableName() string { return "events" }

// EventPromoModel is the GORM model for the event_promos table. Position keeps
// the organiser's ordering.
type EventPromoModel struct {
	EventID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position   int             `gorm:"primaryKey;autoIncrement:false"`
	Code       string          `gorm:"type:varchar(50);not null"`
	Discount   decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	UsageLimit int             `gorm:"not null"`
	UsedCount  int             `gorm:"not null;default:0"`
}

// TableName sets the table name.
func (EventPromoModel) TableName() string { return "event_promos" }

// GormEventRepository implements event.Repository using GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// FindByID returns an event with its promos.
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	return r.find(ctx, id, false)
}

// FindByIDForUpdate locks the event row until the surrounding transaction ends.
func (r *GormEventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	return r.find(ctx, id, database.InTx(ctx))
}

func (r *GormEventRepository) find(ctx context.Context, id uuid.UUID, lock bool) (*eventDomain.Event, error) {
	db := database.Conn(ctx, r.db)
	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model EventModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translate(err, "Event", id.String())
	}

	var promos []EventPromoModel
	if err := db.Where("event_id = ?", id).Order("position ASC").Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("load promos for event %s: %w", id, err)
	}
	return toEventDomain(&model, promos), nil
}

// UpdatePromos replaces the event's promo rows.
func (r *GormEventRepository) UpdatePromos(ctx context.Context, id uuid.UUID, promos []eventDomain.Promo) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&EventPromoModel{}).Error; err != nil {
			return fmt.Errorf("delete promos for event %s: %w", id, err)
		}
		models := toPromoModels(id, promos)
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("insert promos for event %s: %w", id, err)
		}
		return nil
	})
}

// Save persists a new event and its promos.
func (r *GormEventRepository) Save(ctx context.Context, e *eventDomain.Event) error {
	model := toEventModel(e)
	promos := toPromoModels(e.ID(), e.Promos())
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return translate(err, "Event", e.ID().String())
		}
		if len(promos) == 0 {
			return nil
		}
		return tx.Create(&promos).Error
	})
}

// List returns all events ordered by date.
func (r *GormEventRepository) List(ctx context.Context) ([]*eventDomain.Event, error) {
	db := database.Conn(ctx, r.db)

	var models []EventModel
	if err := db.Order("date ASC, created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return []*eventDomain.Event{}, nil
	}

	ids := make([]uuid.UUID, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	var promos []EventPromoModel
	if err := db.Where("event_id IN ?", ids).Order("event_id, position ASC").Find(&promos).Error; err != nil {
		return nil, err
	}
	byEvent := make(map[uuid.UUID][]EventPromoModel, len(models))
	for _, p := range promos {
		byEvent[p.EventID] = append(byEvent[p.EventID], p)
	}

	events := make([]*eventDomain.Event, len(models))
	for i := range models {
		events[i] = toEventDomain(&models[i], byEvent[models[i].ID])
	}
	return events, nil
}

func toEventModel(e *eventDomain.Event) EventModel {
	return EventModel{
		ID: e.ID(), Name: e.Name(), Date: e.Date(), Place: e.Place(), Price: e.Price(),
		Description: e.Description(), Category: e.Category(), ImageURL: e.ImageURL(),
		CreatedAt: e.CreatedAt(),
	}
}

func toPromoModels(eventID uuid.UUID, promos []eventDomain.Promo) []EventPromoModel {
	models := make([]EventPromoModel, len(promos))
	for i, p := range promos {
		models[i] = EventPromoModel{
			EventID:    eventID,
			Position:   i,
			Code:       p.Code(),
			Discount:   p.Discount(),
			UsageLimit: p.UsageLimit(),
			UsedCount:  p.UsedCount(),
		}
	}
	return models
}

func toEventDomain(m *EventModel, promos []EventPromoModel) *eventDomain.Event {
	list := make([]eventDomain.Promo, len(promos))
	for i, p := range promos {
		list[i] = eventDomain.ReconstructPromo(p.Code, p.Discount, p.UsageLimit, p.UsedCount)
	}
	return eventDomain.Reconstruct(
		m.ID, m.Name, m.Date, m.Place, m.Price,
		m.Description, m.Category, m.ImageURL,
		list, m.CreatedAt,
	)
}

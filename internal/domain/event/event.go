package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and display format of an event date.
const DateLayout = "2006-01-02"

// Event is the aggregate root of the event catalog.
type Event struct {
	id          uuid.UUID
	name        string
	date        time.Time
	place       string
	price       int64 // whole fiat units
	description string
	category    string
	imageURL    string
	promos      []Promo
	createdAt   time.Time
}

// NewEvent creates an event. The date must not be before today relative to now.
func NewEvent(name string, date time.Time, place string, price int64, description, category, imageURL string, promos []Promo, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)
	place = strings.TrimSpace(place)
	category = strings.TrimSpace(category)
	if name == "" || place == "" || category == "" {
		return nil, fmt.Errorf("name, place and category are required")
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if dateOnly(date).Before(dateOnly(now)) {
		return nil, ErrDateInPast
	}
	seen := make(map[string]struct{}, len(promos))
	for _, p := range promos {
		key := NormalizeCode(p.Code())
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate promo code %s", p.Code())
		}
		seen[key] = struct{}{}
	}

	return &Event{
		id:          uuid.New(),
		name:        name,
		date:        dateOnly(date),
		place:       place,
		price:       price,
		description: description,
		category:    category,
		imageURL:    imageURL,
		promos:      append([]Promo(nil), promos...),
		createdAt:   now.UTC(),
	}, nil
}

// ErrDateInPast is returned by NewEvent for dates before today.
var ErrDateInPast = errors.New("event date cannot be in the past")

// Reconstruct rebuilds an Event from persistence.
func Reconstruct(id uuid.UUID, name string, date time.Time, place string, price int64, description, category, imageURL string, promos []Promo, createdAt time.Time) *Event {
	return &Event{
		id: id, name: name, date: dateOnly(date), place: place, price: price,
		description: description, category: category, imageURL: imageURL,
		promos: promos, createdAt: createdAt,
	}
}

// FindPromo returns the promo matching code after trim and case folding.
func (e *Event) FindPromo(code string) (Promo, bool) {
	for _, p := range e.promos {
		if p.Matches(code) {
			return p, true
		}
	}
	return Promo{}, false
}

// SetPromoUsage records the redemption count of the promo matching code.
func (e *Event) SetPromoUsage(code string, used int) error {
	for i, p := range e.promos {
		if !p.Matches(code) {
			continue
		}
		updated, err := p.WithUsedCount(used)
		if err != nil {
			return err
		}
		e.promos[i] = updated
		return nil
	}
	return fmt.Errorf("promo %s not found on event %s", code, e.id)
}

// SetImageURL attaches the uploaded image before the event is first saved.
func (e *Event) SetImageURL(url string) { e.imageURL = url }

// ExpectedPrice returns price * (1 - discount).
func (e *Event) ExpectedPrice(discount decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(e.price).Mul(decimal.NewFromInt(1).Sub(discount))
}

// DateString formats the event date as YYYY-MM-DD.
func (e *Event) DateString() string { return e.date.Format(DateLayout) }

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *Event) ID() uuid.UUID        { return e.id }
func (e *Event) Name() string         { return e.name }
func (e *Event) Date() time.Time      { return e.date }
func (e *Event) Place() string        { return e.place }
func (e *Event) Price() int64         { return e.price }
func (e *Event) Description() string  { return e.description }
func (e *Event) Category() string     { return e.category }
func (e *Event) ImageURL() string     { return e.imageURL }
func (e *Event) Promos() []Promo      { return append([]Promo(nil), e.promos...) }
func (e *Event) CreatedAt() time.Time { return e.createdAt }

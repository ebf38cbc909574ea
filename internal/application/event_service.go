package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
)

const (
	msgDateInPast       = "Event date cannot be in the past"
	msgBadImageType     = "Only JPEG, PNG, or GIF images are allowed"
	msgBadPromocodes    = "Invalid promocodes format"
	msgEventCreatedInUA = "Захід створено"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// PromoInput is one promo code supplied by the organiser.
type PromoInput struct {
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	UsageLimit int             `json:"usageLimit"`
}

// ImageUpload is an optional event image.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateEventRequest carries the organiser's form. Price and Promocodes are raw
// form values; Promocodes is a JSON array of PromoInput.
type CreateEventRequest struct {
	Name        string
	Date        string
	Place       string
	Price       string
	Description string
	Category    string
	Promocodes  string
	Image       *ImageUpload
}

// CreateEventResponse is returned by POST /api/event.
type CreateEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EventID string `json:"eventId"`
}

// EventService handles the event catalog.
type EventService struct {
	repo      eventDomain.Repository
	images    adapter.ImageStore
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewEventService creates a new EventService.
func NewEventService(repo eventDomain.Repository, images adapter.ImageStore, publisher Publisher, logger *zap.Logger) *EventService {
	return &EventService{repo: repo, images: images, publisher: publisher, now: time.Now, logger: logger}
}

// CreateEvent validates and stores a new event, then announces it to subscribers.
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*CreateEventResponse, error) {
	if blank(req.Name) || blank(req.Date) || blank(req.Place) || blank(req.Price) || blank(req.Category) {
		return nil, domain.NewValidationError(msgMissingFields)
	}

	date, err := time.Parse(eventDomain.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, domain.NewValidationError("Invalid event date")
	}
	price, err := strconv.ParseInt(strings.TrimSpace(req.Price), 10, 64)
	if err != nil || price <= 0 {
		return nil, domain.NewValidationError("Invalid event price")
	}

	var hasImage bool
	if req.Image != nil && req.Image.Size > 0 {
		if !allowedImageTypes[req.Image.ContentType] {
			return nil, domain.NewValidationError(msgBadImageType)
		}
		hasImage = true
	}

	promos, err := parsePromocodes(req.Promocodes)
	if err != nil {
		return nil, err
	}

	ev, err := eventDomain.NewEvent(req.Name, date, req.Place, price, req.Description, req.Category, "", promos, s.now())
	if err != nil {
		return nil, eventValidationError(err)
	}
	if hasImage {
		imageURL, err := s.images.Put(ctx, req.Image.FileName, req.Image.ContentType, req.Image.Body)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		ev.SetImageURL(imageURL)
	}
	if err := s.repo.Save(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		zap.String("event_id", ev.ID().String()),
		zap.String("name", ev.Name()),
		zap.String("date", ev.DateString()),
		zap.Int("promos", len(promos)),
	)

	msg := EventCreatedMessage{
		EventID:   ev.ID().String(),
		Name:      ev.Name(),
		Date:      ev.DateString(),
		CreatedAt: ev.CreatedAt(),
	}
	if err := s.publisher.PublishEventCreated(ctx, msg); err != nil {
		s.logger.Error("failed to publish event created", zap.String("event_id", msg.EventID), zap.Error(err))
	}

	return &CreateEventResponse{Success: true, Message: msgEventCreatedInUA, EventID: ev.ID().String()}, nil
}

// ListEvents returns the catalog ordered by date.
func (s *EventService) ListEvents(ctx context.Context) ([]EventDTO, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	return dtos, nil
}

func parsePromocodes(raw string) ([]eventDomain.Promo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var inputs []PromoInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, domain.NewValidationError(msgBadPromocodes)
	}
	promos := make([]eventDomain.Promo, 0, len(inputs))
	for _, in := range inputs {
		p, err := eventDomain.NewPromo(in.Code, in.Discount, in.UsageLimit)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		promos = append(promos, p)
	}
	return promos, nil
}

func eventValidationError(err error) error {
	if errors.Is(err, eventDomain.ErrDateInPast) {
		return domain.NewValidationError(msgDateInPast)
	}
	return domain.NewValidationError(err.Error())
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

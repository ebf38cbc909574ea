package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/response"
)

// EventHandler handles the event catalog.
type EventHandler struct {
	service EventUseCases
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service EventUseCases) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes registers event routes.
func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/event", h.CreateEvent)
	r.GET("/events", h.ListEvents)
}

// createEventBody is the JSON form of POST /api/event. Promocodes may be an
// array or a JSON-encoded string, and price a number or a string.
type createEventBody struct {
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Place       string          `json:"place"`
	Price       json.RawMessage `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Promocodes  json.RawMessage `json:"promocodes"`
}

// CreateEvent handles POST /api/event as multipart/form-data with an optional
// "image" file, or as JSON.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var (
		req application.CreateEventRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.bindMultipart(c)
	} else {
		req, err = bindEventJSON(c)
	}
	if err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}
	if req.Image != nil {
		if closer, ok := req.Image.Body.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	result, err := h.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, "Failed to create event", err)
		return
	}
	response.OK(c, result)
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c.Request.Context())
	if err != nil {
		response.Error(c, "Failed to fetch events", err)
		return
	}
	response.OK(c, events)
}

func (h *EventHandler) bindMultipart(c *gin.Context) (application.CreateEventRequest, error) {
	req := application.CreateEventRequest{
		Name:        c.PostForm("name"),
		Date:        c.PostForm("date"),
		Place:       c.PostForm("place"),
		Price:       c.PostForm("price"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Promocodes:  c.PostForm("promocodes"),
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("read image: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return req, fmt.Errorf("open image: %w", err)
	}
	req.Image = &application.ImageUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return req, nil
}

func bindEventJSON(c *gin.Context) (application.CreateEventRequest, error) {
	var body createEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return application.CreateEventRequest{}, err
	}
	return application.CreateEventRequest{
		Name:        body.Name,
		Date:        body.Date,
		Place:       body.Place,
		Price:       rawScalar(body.Price),
		Description: body.Description,
		Category:    body.Category,
		Promocodes:  rawScalar(body.Promocodes),
	}, nil
}

// rawScalar unquotes a JSON string and returns any other JSON value verbatim.
func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

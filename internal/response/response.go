package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TicketsPartners/service-tickets/internal/domain"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// OK writes body with status 200.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// BadRequest writes a 400 with message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// Error writes err with the status its domain kind maps to. Unclassified errors
// become 500 with "<prefix>: <message>".
func Error(c *gin.Context, prefix string, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: err.Error()}

	var de *domain.DomainError
	if errors.As(err, &de) {
		body.Error = de.Message
		body.Retryable = de.Retryable
	}
	if status == http.StatusInternalServerError && prefix != "" {
		body.Error = prefix + ": " + err.Error()
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// StatusFor maps a domain error kind to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrPromo),
		errors.Is(err, domain.ErrPayment):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

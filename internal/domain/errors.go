package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds carried by DomainError. Handlers map them to HTTP status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrPromo      = errors.New("promo rejected")
	ErrPayment    = errors.New("payment rejected")
	ErrConflict   = errors.New("conflict")

	// ErrDuplicateKey is a Conflict raised by a unique constraint.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key", ErrConflict)
)

// DomainError is a user-facing failure with a stable message.
type DomainError struct {
	Err       error
	Message   string
	Retryable bool
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewValidationError reports missing or malformed input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewNotFoundError reports an unknown entity, e.g. NewNotFoundError("Event", id).
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// NewPromoError reports an invalid, exhausted or malformed promo code.
func NewPromoError(message string) *DomainError {
	return &DomainError{Err: ErrPromo, Message: message}
}

// NewPaymentError reports a payment that could not be accepted. Retryable errors
// mean the chain has not caught up yet and the client should poll again.
func NewPaymentError(message string, retryable bool) *DomainError {
	return &DomainError{Err: ErrPayment, Message: message, Retryable: retryable}
}

// NewConflictError reports a uniqueness or concurrency conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewDuplicateKeyError reports a unique constraint violation on entity.
func NewDuplicateKeyError(entity string) *DomainError {
	return &DomainError{Err: ErrDuplicateKey, Message: fmt.Sprintf("%s already exists", entity)}
}

// IsRetryable reports whether err is a DomainError flagged as retryable.
func IsRetryable(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Retryable
}

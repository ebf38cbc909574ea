package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TicketsPartners/service-tickets/internal/domain"
)

// translate maps GORM sentinel errors to domain errors.
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewDuplicateKeyError(entity)
	default:
		return err
	}
}

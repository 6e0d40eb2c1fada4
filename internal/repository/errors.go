package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
)

var (
	// ErrInvalidIdentifier is returned when an order column or procedure name
	// is not a plain SQL identifier.
	ErrInvalidIdentifier = errors.New("repository: invalid identifier")

	// ErrUnknownAction is returned by ApplyChanges for an Action outside
	// Add, Modify and Delete.
	ErrUnknownAction = errors.New("repository: unknown change action")

	// ErrNotEntity is returned by operations that need the entity shape
	// (restore, upsert) on a type that does not embed domain.EntityBase.
	ErrNotEntity = errors.New("repository: type does not embed domain.EntityBase")

	// ErrProceduresUnsupported is returned by the Call* helpers on dialects
	// without stored procedures.
	ErrProceduresUnsupported = errors.New("repository: stored procedures are not supported by this dialect")
)

// notFound turns gorm.ErrRecordNotFound into a domain not-found error and
// returns every other error unchanged.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "not found", err)
	}
	return err
}

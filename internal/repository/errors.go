package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/observability/metrics"
)

// Postgres error codes we translate into the domain taxonomy. The store's
// constraints are the authority for races on uniqueness: two concurrent
// writes both pass service pre-checks, and the loser surfaces here.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTruncation    = "22001"
)

// mapError converts a lib/pq error into a domain error. Non-pq errors are
// wrapped unchanged.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch string(pqErr.Code) {
	case codeUniqueViolation:
		metrics.ObserveConstraintViolation(pqErr.Table)
		return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, domain.ErrConflict)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, domain.ErrNotFound)
	case codeCheckViolation:
		// The workers_number_check constraint backs the at-least-one-number
		// rule when a racing update clears the last remaining field.
		return domain.NewValidationError().Add("numbers", "at least one phone number is required")
	case codeStringTruncation:
		// Column widths are pre-checked in the domain layer; this is the
		// backstop for any value that slips past.
		return domain.NewValidationError().Add("body", "value too long for field")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

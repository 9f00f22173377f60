package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by repositories and services. Handlers map these
// onto HTTP statuses, so everything below the transport layer wraps one of
// them with %w instead of inventing ad-hoc error strings.
var (
	// ErrNotFound covers missing rows and access-scoped lookups that hide
	// rows the caller is not allowed to see.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the identity is authenticated but policy denies
	// the specific action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is a storage-layer rejection of a write that would break
	// a uniqueness rule.
	ErrConflict = errors.New("constraint violation")

	// ErrUnauthenticated means the action requires an identity and the
	// caller has none.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError reports malformed or incomplete input with field-level
// detail. It is never recovered internally; it travels to the caller as a
// 400 response.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a problem with a single field and returns the error so calls
// can be chained while building up a report.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = message
	return e
}

// Empty reports whether any field problem has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError if one is in the chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/yourorg/phonebook/internal/domain"
)

func TestMapErrorUniqueViolation(t *testing.T) {
	err := mapError(&pq.Error{Code: "23505", Constraint: "org_editors", Table: "editing_rights"}, "create grant")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMapErrorForeignKeyViolation(t *testing.T) {
	err := mapError(&pq.Error{Code: "23503", Constraint: "workers_organization_id_fkey"}, "create worker")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMapErrorCheckViolation(t *testing.T) {
	err := mapError(&pq.Error{Code: "23514", Constraint: "workers_number_check"}, "update worker")
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, found := ve.Fields["numbers"]; !found {
		t.Fatalf("expected numbers field error, got %v", ve.Fields)
	}
}

func TestMapErrorStringTruncation(t *testing.T) {
	// An overlong value must read as a field problem, never as an
	// internal error.
	err := mapError(&pq.Error{Code: "22001"}, "create worker")
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("expected validation error for truncation, got %v", err)
	}
}

func TestMapErrorWrapsOtherErrors(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := mapError(cause, "list workers")
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unexpected domain mapping for %v", err)
	}
	if _, ok := domain.AsValidation(err); ok {
		t.Fatalf("unexpected validation mapping for %v", err)
	}
}

func TestLikePattern(t *testing.T) {
	cases := []struct {
		search string
		want   string
	}{
		{"acme", "%acme%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
	}

	for _, c := range cases {
		if got := likePattern(c.search); got != c.want {
			t.Errorf("likePattern(%q) = %q, want %q", c.search, got, c.want)
		}
	}
}

package datastore

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means no row matched the (id, owner) pair. Absent and
	// not-owned are deliberately indistinguishable so one user can never
	// probe for another user's resources.
	ErrNotFound = errors.New("record not found")

	// ErrNoFields means an update carried no allow-listed column.
	ErrNoFields = errors.New("no updatable fields provided")

	// ErrBookNotFound and ErrCategoryNotFound let the association layer
	// report which side of a link failed the ownership check.
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// DuplicateError is a uniqueness-constraint violation, classified from
// the driver's structured error rather than by message sniffing.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value violates constraint %q", e.Constraint)
}

// NullViolationError is a NOT NULL violation. Column carries the name of
// the offending column so the API can report it.
type NullViolationError struct {
	Column string
}

func (e *NullViolationError) Error() string {
	return fmt.Sprintf("column %q cannot be null", e.Column)
}

// Postgres error codes per the SQLSTATE appendix.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

// classifyError translates driver-level constraint failures into the
// typed errors above. Anything unrecognized passes through unchanged.
func classifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return &DuplicateError{Constraint: pqErr.Constraint}
		case pgNotNullViolation:
			return &NullViolationError{Column: pqErr.Column}
		}
	}
	return err
}

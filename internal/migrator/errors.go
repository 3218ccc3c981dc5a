package migrator

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	maxModelLength = 255
	maxSlugLength  = 300
)

// ValidationError marks a record that cannot be represented in the catalog.
// The record is skipped and counted; processing continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PrereqError marks a persistence failure while resolving a Brand or Source.
// These are prerequisites for every record in a file, so the file is
// abandoned.
type PrereqError struct {
	Entity string
	Name   string
	Err    error
}

func (e *PrereqError) Error() string {
	return fmt.Sprintf("failed to resolve %s %q: %v", e.Entity, e.Name, e.Err)
}

func (e *PrereqError) Unwrap() error { return e.Err }

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique index collision
// not otherwise anticipated, e.g. a race on a listing URL.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

package repository

import (
	"context"
	"fmt"

	"github.com/stepsurvey/steps-survey/internal/domain"
)

// Error constants for repository layer
var (
	// ErrEmptyStore means nothing has been persisted yet. It is an expected
	// condition: callers show guidance instead of failing.
	ErrEmptyStore = RepositoryError("no entries stored yet")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PersistenceError reports a failed write. The entry being written is lost;
// the caller must resubmit. It is never retried.
type PersistenceError struct {
	Op  string // "append"
	Key string // Resource name (file, object key, collection, table)
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s to %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ParseError reports a malformed resource. It only fails the load call that hit it.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadReport counts rows that Load had to repair or drop.
type LoadReport struct {
	Rows        int // Data rows read from the resource
	Coerced     int // Rows where steps or energy could not be parsed and became 0
	DroppedDate int // Rows dropped because the date could not be parsed
}

// Clean reports whether every row was read as-is.
func (r LoadReport) Clean() bool {
	return r.Coerced == 0 && r.DroppedDate == 0
}

// EntryRepository is the append-only Entry Store.
type EntryRepository interface {
	// Append adds one entry after all existing rows.
	// Write failures are returned as *PersistenceError.
	Append(ctx context.Context, entry domain.Entry) error

	// Load returns the full table in append order, or ErrEmptyStore.
	Load(ctx context.Context) (domain.EntryTable, LoadReport, error)
}

// ReferenceRepository loads the static study dataset.
type ReferenceRepository interface {
	// Load returns an empty dataset when the resource does not exist,
	// and *ParseError when it is malformed.
	Load(ctx context.Context) (domain.ReferenceDataset, error)
}

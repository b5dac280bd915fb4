// Package store provides borrower directory persistence.
package store

import (
	"context"
	"errors"
	"io"

	"github.com/bargaj/collectcall/internal/domain"
)

// ErrNotFound is returned when no borrower record matches the given key.
var ErrNotFound = errors.New("borrower not found")

// Directory is the borrower record store. Records are keyed by phone number;
// the core dialogue engine only ever needs keyed reads and partial-field
// merge writes.
type Directory interface {
	// Lookup retrieves the record for a phone number, or ErrNotFound.
	Lookup(ctx context.Context, phoneNumber string) (*domain.BorrowerRecord, error)

	// MergeUpdate atomically merges fields into the record for phoneNumber,
	// adding new disposition fields and overwriting existing ones. Other
	// records and unnamed fields are untouched.
	MergeUpdate(ctx context.Context, phoneNumber string, fields map[string]string) error

	// Upsert creates or replaces the fixed portion of a borrower record.
	Upsert(ctx context.Context, rec *domain.BorrowerRecord) error

	// List returns every borrower record, for batch call placement.
	List(ctx context.Context) ([]*domain.BorrowerRecord, error)

	// ImportCSV loads borrower rows from CSV and returns how many were
	// upserted. The header must carry the fixed column names.
	ImportCSV(ctx context.Context, r io.Reader) (int, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying database.
	Close() error
}

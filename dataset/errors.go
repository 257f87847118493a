package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a frame does not exist at the given path.
	// It is a normal condition on first run, distinct from an I/O fault.
	ErrNotFound = errors.New("dataset: frame not found")

	// ErrMissingBaseDataset reports that neither the accumulated table nor
	// the base table exists, so there is nothing to seed accumulation from.
	ErrMissingBaseDataset = errors.New("dataset: base training dataset missing")

	// ErrMissingIDColumn reports that incoming records lack the id column
	// required for deduplication.
	ErrMissingIDColumn = errors.New("dataset: incoming records have no id column")
)

// StorageError wraps a read/write failure of the underlying storage. It is
// retryable: no partial state is persisted when one occurs.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("dataset: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

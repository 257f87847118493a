package services

import (
	"errors"
	"fmt"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// referenceSampleCap bounds the reference frame created from the base
// training set on first run.
const referenceSampleCap = 1000

// EnsureReference loads the drift-reference frame, creating it from the
// base training set when it does not exist yet. The created reference is
// persisted so every later run compares against the same distribution.
func EnsureReference(store dataset.Store, referencePath, basePath string, logger *utils.Logger) (*dataset.Frame, error) {
	reference, err := store.Read(referencePath)
	if err == nil {
		logger.Info("[reference] Loaded reference data: %d rows", reference.Len())
		return reference, nil
	}
	if !errors.Is(err, dataset.ErrNotFound) {
		return nil, err
	}

	base, err := store.Read(basePath)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return nil, fmt.Errorf("reference: no reference data and no base training set: %w", err)
		}
		return nil, err
	}

	reference = base.Head(referenceSampleCap)
	if err := store.Write(referencePath, reference); err != nil {
		return nil, err
	}

	logger.Info("[reference] Created reference data from base training set: %d rows", reference.Len())
	return reference, nil
}

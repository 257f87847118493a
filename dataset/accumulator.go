package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthew-michal/apartment-rental-nj-2025/locking"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// IDColumn is the identity column used for deduplication.
const IDColumn = "id"

// predictionColumns are scoring outputs that must never reach the
// accumulated training table.
var predictionColumns = []string{"predicted_price", "price_diff"}

// MergeSummary reports the outcome of one merge. The three counts always
// satisfy finalSize = previousSize + AddedRows - DuplicatesRemoved.
type MergeSummary struct {
	AddedRows         int
	DuplicatesRemoved int
	FinalSize         int
}

// AccumulationStats describes the accumulated table's growth over base.
type AccumulationStats struct {
	BaseSize         int
	AccumulatedSize  int
	Growth           int
	GrowthPercentage float64
}

// Accumulator owns the accumulated training table's lifecycle: it folds
// newly scored records into the table, deduplicating by id with
// last-write-wins semantics, and can reset the table back to base.
//
// It assumes a single writer per accumulated path; the injected Locker
// serializes merges across processes.
type Accumulator struct {
	store           Store
	basePath        string
	accumulatedPath string
	locker          locking.Locker
	logger          *utils.Logger
}

// NewAccumulator wires an Accumulator over the given store and table paths.
func NewAccumulator(store Store, basePath, accumulatedPath string, locker locking.Locker, logger *utils.Logger) *Accumulator {
	return &Accumulator{
		store:           store,
		basePath:        basePath,
		accumulatedPath: accumulatedPath,
		locker:          locker,
		logger:          logger,
	}
}

// Merge folds incoming scored records into the accumulated table.
//
// The accumulated table is loaded (or seeded from base on first run),
// prediction-output columns are stripped from the incoming rows, the
// incoming rows are appended after all existing rows, and rows sharing an
// id collapse to the last occurrence, so a re-observed listing overwrites
// its older values while new ids append. The result replaces the persisted
// table atomically; on any failure the prior table is left untouched.
func (a *Accumulator) Merge(ctx context.Context, incoming *Frame) (MergeSummary, error) {
	if !incoming.HasColumn(IDColumn) {
		return MergeSummary{}, ErrMissingIDColumn
	}

	lease, err := a.locker.Acquire(ctx, "accumulate:"+a.accumulatedPath)
	if err != nil {
		return MergeSummary{}, fmt.Errorf("accumulator: acquire merge lock: %w", err)
	}
	defer func() {
		if rerr := lease.Release(ctx); rerr != nil {
			a.logger.Warn("[accumulator] releasing merge lock: %v", rerr)
		}
	}()

	accumulated, err := a.loadAccumulated()
	if err != nil {
		return MergeSummary{}, err
	}
	previousSize := accumulated.Len()

	incomingTraining := incoming.DropColumns(predictionColumns...)

	combined := accumulated.Concat(incomingTraining)
	deduplicated, err := combined.DedupLastByColumn(IDColumn)
	if err != nil {
		return MergeSummary{}, fmt.Errorf("accumulator: %w", err)
	}

	if err := a.store.Write(a.accumulatedPath, deduplicated); err != nil {
		return MergeSummary{}, err
	}

	summary := MergeSummary{
		AddedRows:         incomingTraining.Len(),
		DuplicatesRemoved: combined.Len() - deduplicated.Len(),
		FinalSize:         deduplicated.Len(),
	}

	a.logger.Info("[accumulator] Merged %d rows: %d duplicates removed, %d → %d total",
		summary.AddedRows, summary.DuplicatesRemoved, previousSize, summary.FinalSize)

	return summary, nil
}

// loadAccumulated returns the current accumulated table, seeding from the
// base table on first run. Only a genuine not-found falls back to base; an
// I/O failure aborts the merge so a readable table is never overwritten
// with a fresh seed.
func (a *Accumulator) loadAccumulated() (*Frame, error) {
	accumulated, err := a.store.Read(a.accumulatedPath)
	if err == nil {
		a.logger.Debug("[accumulator] Loaded accumulated table: %d rows", accumulated.Len())
		return accumulated, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	base, err := a.store.Read(a.basePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBaseDataset, a.basePath)
		}
		return nil, err
	}

	a.logger.Info("[accumulator] No accumulated table yet — starting from base (%d rows)", base.Len())
	return base, nil
}

// Reset overwrites the accumulated table with an exact copy of the base
// table, discarding all accumulated growth. It returns the resulting row
// count and is idempotent.
func (a *Accumulator) Reset(ctx context.Context) (int, error) {
	lease, err := a.locker.Acquire(ctx, "accumulate:"+a.accumulatedPath)
	if err != nil {
		return 0, fmt.Errorf("accumulator: acquire reset lock: %w", err)
	}
	defer func() {
		if rerr := lease.Release(ctx); rerr != nil {
			a.logger.Warn("[accumulator] releasing reset lock: %v", rerr)
		}
	}()

	base, err := a.store.Read(a.basePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrMissingBaseDataset, a.basePath)
		}
		return 0, err
	}

	if err := a.store.Write(a.accumulatedPath, base); err != nil {
		return 0, err
	}

	a.logger.Info("[accumulator] Reset accumulated table to base dataset (%d rows)", base.Len())
	return base.Len(), nil
}

// Stats reports the accumulated table's size relative to base. When no
// accumulated table exists yet it returns (nil, nil) — a normal initial
// state, not a fault.
func (a *Accumulator) Stats() (*AccumulationStats, error) {
	accumulated, err := a.store.Read(a.accumulatedPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	base, err := a.store.Read(a.basePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBaseDataset, a.basePath)
		}
		return nil, err
	}

	growth := accumulated.Len() - base.Len()
	stats := &AccumulationStats{
		BaseSize:        base.Len(),
		AccumulatedSize: accumulated.Len(),
		Growth:          growth,
	}
	if base.Len() > 0 {
		stats.GrowthPercentage = float64(growth) / float64(base.Len()) * 100
	}
	return stats, nil
}

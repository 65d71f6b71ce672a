// Package odometer reconstructs per-bar travel distance and move counts
// from CSU motion logs: one expensive, cacheable result per log file,
// summed into corpus-wide totals.
package odometer

import (
	"context"

	"github.com/hilodev/csuodo/internal/csu"
)

// FileResult is the odometer contribution of a single log file: cumulative
// absolute travel and move count per bar, in the log's native position
// unit. JSON field names match the artifact written by earlier versions of
// the tool so existing odometer.json files stay loadable.
type FileResult struct {
	Mileage [csu.NumBars]float64 `json:"odometer"`
	Moves   [csu.NumBars]int64   `json:"nmoves"`
}

// Store caches one FileResult per log directory. A hit must return exactly
// what was put: re-runs rely on cached results being identical to a fresh
// computation. Entries are never invalidated automatically; Delete is the
// manual invalidation path for corrected source logs.
type Store interface {
	Get(ctx context.Context, dir string) (*FileResult, bool, error)
	Put(ctx context.Context, dir string, res *FileResult) error
	Delete(ctx context.Context, dir string) error
}

// Exporter receives the finished corpus aggregate, typically to hand the
// per-bar arrays to the plotting collaborator.
type Exporter interface {
	Export(agg *Aggregate) error
}

// Package mapsearch resolves a filtered query into row-per-facility map
// markers constrained to a viewport.
package mapsearch

import (
	"context"
	"fmt"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
	"github.com/mklincoln/factorymap/internal/store"
)

// DefaultRowCap bounds a map response regardless of the true match count, to
// protect transport size. Excess rows are dropped in (name, id) order, so
// repeated calls return the same truncated set.
const DefaultRowCap = 5000

type Resolver struct {
	store  store.Store
	rowCap int
}

func New(st store.Store, rowCap int) *Resolver {
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	return &Resolver{store: st, rowCap: rowCap}
}

// Resolve returns in-viewport facility rows, whether the cap dropped any, and
// the true match count. Truncation is a flagged outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, f model.FilterState, bbox model.BBox) ([]model.MapFacility, bool, int, error) {
	rows, total, err := r.store.MapFacilities(ctx, f, bbox, r.rowCap)
	if err != nil {
		return nil, false, 0, fmt.Errorf("map facilities: %w", err)
	}
	truncated := total > len(rows)
	if truncated {
		observability.IncMapTruncation()
	}
	return rows, truncated, total, nil
}

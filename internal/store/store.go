// Package store defines the read-only corpus interface the search paths run
// against, plus the transient-failure classification shared by its
// implementations.
package store

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mklincoln/factorymap/internal/core/model"
)

// ErrUnavailable marks a store failure worth retrying. Implementations wrap
// transient conditions (timeouts, refused connections, server shutdown) with
// it; everything else is treated as permanent.
var ErrUnavailable = errors.New("store unavailable")

// Store is a pure read path. Every call is idempotent and safe to retry; no
// method mutates anything.
type Store interface {
	// SearchCompanies returns up to limit companies strictly past the key in
	// the given direction, ordered ascending for PageNext and descending for
	// PagePrev. A nil key starts from the corresponding end.
	SearchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error)

	// CountCompanies returns the total match count for the filter set.
	CountCompanies(ctx context.Context, f model.FilterState) (int, error)

	// FacetCounts groups matches of f by their values on one axis. Callers
	// pass f with that axis's own selection already cleared.
	FacetCounts(ctx context.Context, f model.FilterState, axis model.FacetAxis) (map[string]int, error)

	// MapFacilities flattens matching companies into one row per facility
	// inside bbox, ordered by (company name, facility id), capped at limit.
	// The second return is the true match count before the cap.
	MapFacilities(ctx context.Context, f model.FilterState, bbox model.BBox, limit int) ([]model.MapFacility, int, error)

	Ping(ctx context.Context) error
}

// IsTransient reports whether an error is worth retrying. Context
// cancellation is never transient: the caller has already gone away.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		// connection exceptions, admin shutdown, resource exhaustion
		switch {
		case len(pge.Code) >= 2 && (pge.Code[:2] == "08" || pge.Code[:2] == "53"):
			return true
		case pge.Code == "57P01" || pge.Code == "57P02" || pge.Code == "57P03":
			return true
		}
	}
	return false
}

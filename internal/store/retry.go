package store

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
)

// WithRetry wraps a Store with bounded exponential backoff and jitter.
// Only transient failures are retried; permanent errors and context
// cancellation pass through on the first attempt.
type WithRetry struct {
	next     Store
	logger   *slog.Logger
	attempts int
	base     time.Duration
	sleep    func(ctx context.Context, d time.Duration) error // for tests
}

func NewRetrying(next Store, logger *slog.Logger, attempts int, base time.Duration) *WithRetry {
	if logger == nil {
		logger = slog.Default()
	}
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	return &WithRetry{
		next:     next,
		logger:   logger,
		attempts: attempts,
		base:     base,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *WithRetry) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			delay := r.base << (attempt - 1)
			delay += time.Duration(rand.Int64N(int64(delay)/2 + 1))
			r.logger.Warn("retrying store op",
				"op", op, "attempt", attempt+1, "delay", delay.String(), "err", err)
			observability.IncStoreRetry(op)
			if serr := r.sleep(ctx, delay); serr != nil {
				return serr
			}
		}
		err = fn()
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}

func (r *WithRetry) SearchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error) {
	var out []model.Company
	err := r.do(ctx, "search_companies", func() error {
		var e error
		out, e = r.next.SearchCompanies(ctx, f, key, dir, limit)
		return e
	})
	return out, err
}

func (r *WithRetry) CountCompanies(ctx context.Context, f model.FilterState) (int, error) {
	var out int
	err := r.do(ctx, "count_companies", func() error {
		var e error
		out, e = r.next.CountCompanies(ctx, f)
		return e
	})
	return out, err
}

func (r *WithRetry) FacetCounts(ctx context.Context, f model.FilterState, axis model.FacetAxis) (map[string]int, error) {
	var out map[string]int
	err := r.do(ctx, "facet_counts", func() error {
		var e error
		out, e = r.next.FacetCounts(ctx, f, axis)
		return e
	})
	return out, err
}

func (r *WithRetry) MapFacilities(ctx context.Context, f model.FilterState, bbox model.BBox, limit int) ([]model.MapFacility, int, error) {
	var rows []model.MapFacility
	var total int
	err := r.do(ctx, "map_facilities", func() error {
		var e error
		rows, total, e = r.next.MapFacilities(ctx, f, bbox, limit)
		return e
	})
	return rows, total, err
}

func (r *WithRetry) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

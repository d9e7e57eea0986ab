package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/store"
	"github.com/mklincoln/factorymap/internal/store/memstore"
)

func fptr(v float64) *float64 { return &v }

// countingStore delegates to a memstore and counts search calls so tests can
// tell a cache hit from a recompute.
type countingStore struct {
	store.Store
	searches int
}

func (c *countingStore) SearchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error) {
	c.searches++
	return c.Store.SearchCompanies(ctx, f, key, dir, limit)
}

// memCache is an in-process cache.Interface for tests.
type memCache struct {
	entries map[string][]byte
	gen     uint64
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.entries[key] = val
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memCache) Generation(context.Context) (uint64, error) { return m.gen, nil }

func (m *memCache) BumpGeneration(context.Context) (uint64, error) {
	m.gen++
	return m.gen, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func corpus() []model.Company {
	return []model.Company{
		{
			ID: 1, Name: "Acme Fabrication",
			Facilities: []model.Facility{
				{ID: 11, State: "WA", Lng: fptr(-122.33), Lat: fptr(47.6)},
			},
		},
		{
			ID: 2, Name: "Blue Ridge Castings",
			Facilities: []model.Facility{
				{ID: 21, State: "NC", Lng: fptr(-80.84), Lat: fptr(35.22)},
			},
		},
	}
}

func TestSearch_CacheRoundTrip(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	mc := newMemCache()
	svc := New(discard(), cs, 0, mc, time.Minute)
	req := SearchRequest{PageSize: 10}
	ctx := context.Background()

	first, err := svc.Search(ctx, req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cs.searches != 1 {
		t.Fatalf("searches = %d, want 1", cs.searches)
	}

	second, err := svc.Search(ctx, req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cs.searches != 1 {
		t.Fatalf("searches = %d, want cache hit on repeat", cs.searches)
	}
	if second.TotalCount != first.TotalCount || len(second.Records) != len(first.Records) {
		t.Fatalf("cached response differs: %+v vs %+v", second, first)
	}
}

func TestSearch_GenerationBumpInvalidates(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	mc := newMemCache()
	svc := New(discard(), cs, 0, mc, time.Minute)
	req := SearchRequest{PageSize: 10}
	ctx := context.Background()

	if _, err := svc.Search(ctx, req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := mc.BumpGeneration(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	if _, err := svc.Search(ctx, req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cs.searches != 2 {
		t.Fatalf("searches = %d, want recompute after generation bump", cs.searches)
	}
}

func TestSearch_DistinctFiltersDistinctEntries(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	mc := newMemCache()
	svc := New(discard(), cs, 0, mc, time.Minute)
	ctx := context.Background()

	if _, err := svc.Search(ctx, SearchRequest{PageSize: 10}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	wa := SearchRequest{
		Filters:  model.FilterState{States: []model.StateCode{"WA"}},
		PageSize: 10,
	}
	resp, err := svc.Search(ctx, wa)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cs.searches != 2 {
		t.Fatalf("searches = %d, want a miss for the new filter", cs.searches)
	}
	if resp.TotalCount != 1 {
		t.Fatalf("total = %d, want 1 WA company", resp.TotalCount)
	}
}

func TestSearch_NilCacheServesDirect(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	svc := New(discard(), cs, 0, nil, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Search(ctx, SearchRequest{PageSize: 10}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if cs.searches != 2 {
		t.Fatalf("searches = %d, want no caching without a cache", cs.searches)
	}
}

func TestMap_CachesByViewportAndZoom(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	mc := newMemCache()
	svc := New(discard(), cs, 0, mc, time.Minute)
	ctx := context.Background()
	bbox := model.BBox{MinLng: -125, MinLat: 25, MaxLng: -66, MaxLat: 49}

	a, err := svc.Map(ctx, MapRequest{BBox: bbox, Zoom: 4})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.TotalCount != 2 || len(a.Leaves) != 2 {
		t.Fatalf("got %+v", a)
	}
	entries := len(mc.entries)

	// same viewport at a different zoom is a different entry
	if _, err := svc.Map(ctx, MapRequest{BBox: bbox, Zoom: 10}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(mc.entries) != entries+1 {
		t.Fatalf("entries = %d, want zoom to key separately", len(mc.entries))
	}
}

func TestMap_CachedResponseStable(t *testing.T) {
	cs := &countingStore{Store: memstore.New(corpus())}
	mc := newMemCache()
	svc := New(discard(), cs, 0, mc, time.Minute)
	ctx := context.Background()
	req := MapRequest{BBox: model.BBox{MinLng: -125, MinLat: 25, MaxLng: -66, MaxLat: 49}, Zoom: 4}

	a, err := svc.Map(ctx, req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := svc.Map(ctx, req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(a.Leaves) != len(b.Leaves) || a.TotalCount != b.TotalCount || a.Truncated != b.Truncated {
		t.Fatalf("cached map response differs: %+v vs %+v", b, a)
	}
}

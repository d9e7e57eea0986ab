// Package service assembles the search-path components behind the HTTP
// handlers: normalize once, then run pagination, facet counting and map
// clustering against the same filter state.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/mklincoln/factorymap/internal/cache"
	"github.com/mklincoln/factorymap/internal/cache/keys"
	"github.com/mklincoln/factorymap/internal/cluster"
	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
	"github.com/mklincoln/factorymap/internal/facet"
	"github.com/mklincoln/factorymap/internal/mapsearch"
	"github.com/mklincoln/factorymap/internal/search"
	"github.com/mklincoln/factorymap/internal/store"
)

type SearchRequest struct {
	Filters  model.FilterState
	Cursor   string
	PageSize int
}

type SearchResponse struct {
	model.ResultPage
	Facets model.FacetCounts `json:"facets"`
}

type MapRequest struct {
	Filters model.FilterState
	BBox    model.BBox
	Zoom    int
}

type MapResponse struct {
	Clusters   []model.Cluster     `json:"clusters"`
	Leaves     []model.MapFacility `json:"leaves"`
	TotalCount int                 `json:"totalCount"`
	Truncated  bool                `json:"truncated"`
}

type Service struct {
	logger   *slog.Logger
	searcher *search.Searcher
	facets   *facet.Counter
	resolver *mapsearch.Resolver
	cache    cache.Interface // nil disables caching
	cacheTTL time.Duration
}

func New(logger *slog.Logger, st store.Store, rowCap int, c cache.Interface, ttl time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger,
		searcher: search.New(st),
		facets:   facet.New(st),
		resolver: mapsearch.New(st, rowCap),
		cache:    c,
		cacheTTL: ttl,
	}
}

func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	extra := "cursor=" + req.Cursor + "&size=" + strconv.Itoa(req.PageSize)
	key, ok := s.cacheKey(ctx, "search", req.Filters, extra)
	if ok {
		var cached SearchResponse
		if s.cacheGet(ctx, key, &cached) {
			return cached, nil
		}
	}

	page, err := s.searcher.Search(ctx, req.Filters, req.Cursor, req.PageSize)
	if err != nil {
		return SearchResponse{}, err
	}
	counts, err := s.facets.Counts(ctx, req.Filters)
	if err != nil {
		return SearchResponse{}, err
	}
	resp := SearchResponse{ResultPage: page, Facets: counts}
	if ok {
		s.cacheSet(ctx, key, resp)
	}
	return resp, nil
}

func (s *Service) Map(ctx context.Context, req MapRequest) (MapResponse, error) {
	extra := "bbox=" + req.BBox.String() + "&zoom=" + strconv.Itoa(req.Zoom)
	key, ok := s.cacheKey(ctx, "map", req.Filters, extra)
	if ok {
		var cached MapResponse
		if s.cacheGet(ctx, key, &cached) {
			return cached, nil
		}
	}

	rows, truncated, total, err := s.resolver.Resolve(ctx, req.Filters, req.BBox)
	if err != nil {
		return MapResponse{}, err
	}
	clustered := cluster.Cluster(rows, req.Zoom, req.BBox)
	observability.ObserveClusterOutput(len(clustered.Clusters), len(clustered.Leaves))

	resp := MapResponse{
		Clusters:   clustered.Clusters,
		Leaves:     clustered.Leaves,
		TotalCount: total,
		Truncated:  truncated,
	}
	if ok {
		s.cacheSet(ctx, key, resp)
	}
	return resp, nil
}

// cacheKey resolves the corpus generation and builds the response key. Cache
// trouble degrades to uncached serving, never to a failed request.
func (s *Service) cacheKey(ctx context.Context, kind string, f model.FilterState, extra string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("cache generation lookup failed; serving uncached", "err", err)
		return "", false
	}
	return keys.Key(kind, gen, f.CanonicalKey(), extra), true
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache get failed", "key", key, "err", err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("cache entry corrupt; ignoring", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache marshal failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "key", key, "err", err)
	}
}

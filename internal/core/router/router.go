// Package router validates incoming requests and dispatches them to the
// search service.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
	"github.com/mklincoln/factorymap/internal/filter"
	"github.com/mklincoln/factorymap/internal/service"
)

// SearchService is the slice of the service layer the handlers need.
type SearchService interface {
	Search(ctx context.Context, req service.SearchRequest) (service.SearchResponse, error)
	Map(ctx context.Context, req service.MapRequest) (service.MapResponse, error)
}

func HandleSearch(logger *slog.Logger, svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		req, err := ParseSearchRequest(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/search", sw.code, time.Since(start).Seconds())
			return
		}

		resp, err := svc.Search(r.Context(), req)
		if err != nil {
			logger.ErrorContext(r.Context(), "search failed", "err", err)
			http.Error(sw, "search temporarily unavailable", http.StatusBadGateway)
			observability.ObserveHTTP(r.Method, "/search", sw.code, time.Since(start).Seconds())
			return
		}

		writeJSON(sw, resp)
		observability.ObserveHTTP(r.Method, "/search", sw.code, time.Since(start).Seconds())
	}
}

func HandleMap(logger *slog.Logger, svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		req, err := ParseMapRequest(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
			return
		}

		resp, err := svc.Map(r.Context(), req)
		if err != nil {
			logger.ErrorContext(r.Context(), "map search failed", "err", err)
			http.Error(sw, "search temporarily unavailable", http.StatusBadGateway)
			observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
			return
		}

		writeJSON(sw, resp)
		observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
	}
}

// ParseSearchRequest normalizes the listing query. Route segments (a
// certification or state baked into the path) become non-removable defaults.
func ParseSearchRequest(r *http.Request) (service.SearchRequest, error) {
	f, err := filter.Normalize(r.URL.Query(), routeDefaults(r))
	if err != nil {
		return service.SearchRequest{}, err
	}

	pageSize := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("pageSize")); raw != "" {
		// malformed page sizes are dropped like any other stale filter value
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 {
			pageSize = n
		}
	}

	return service.SearchRequest{
		Filters:  f,
		Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		PageSize: pageSize,
	}, nil
}

// ParseMapRequest normalizes a map query; bbox and zoom are required and fail
// hard because they come from a live viewport, not a bookmark.
func ParseMapRequest(r *http.Request) (service.MapRequest, error) {
	f, err := filter.Normalize(r.URL.Query(), routeDefaults(r))
	if err != nil {
		return service.MapRequest{}, err
	}
	if f.BBox == nil {
		return service.MapRequest{}, filter.ErrInvalidBoundingBox
	}
	zoom, err := filter.ParseZoom(r.URL.Query().Get("zoom"))
	if err != nil {
		return service.MapRequest{}, err
	}
	return service.MapRequest{Filters: f, BBox: *f.BBox, Zoom: zoom}, nil
}

func routeDefaults(r *http.Request) filter.RouteDefaults {
	return filter.RouteDefaults{
		Cert:  model.CertSlug(strings.ToLower(chi.URLParam(r, "cert"))),
		State: model.StateCode(strings.ToUpper(chi.URLParam(r, "state"))),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("response encode failed", "err", err)
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

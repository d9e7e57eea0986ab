// Package memstore holds the corpus in process memory. It backs tests and the
// default local driver, and mirrors the postgres store's ordering and
// filtering semantics exactly.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mklincoln/factorymap/internal/core/model"
)

type Store struct {
	companies []model.Company // sorted by (lower(name), id)
}

func New(companies []model.Company) *Store {
	cs := make([]model.Company, len(companies))
	copy(cs, companies)
	for i := range cs {
		fs := make([]model.Facility, len(cs[i].Facilities))
		copy(fs, cs[i].Facilities)
		sort.Slice(fs, func(a, b int) bool { return fs[a].ID < fs[b].ID })
		cs[i].Facilities = fs
	}
	sort.Slice(cs, func(a, b int) bool {
		return model.KeyOf(cs[a]).Less(model.KeyOf(cs[b]))
	})
	return &Store{companies: cs}
}

// Load reads a JSON corpus file: a top-level array of companies.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var cs []model.Company
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return New(cs), nil
}

func (s *Store) Len() int { return len(s.companies) }

func matches(c model.Company, f model.FilterState) bool {
	if f.Volume != "" && c.Volume != f.Volume {
		return false
	}
	if f.CertDefault != "" && !hasCert(c, f.CertDefault) {
		return false
	}
	if len(f.Capabilities) > 0 && !hasAnyCapability(c, f.Capabilities) {
		return false
	}
	if len(f.States) > 0 && !hasFacilityInAny(c, f.States) {
		return false
	}
	return true
}

func hasCert(c model.Company, want model.CertSlug) bool {
	for _, cert := range c.Certifications {
		if cert == want {
			return true
		}
	}
	return false
}

func hasAnyCapability(c model.Company, want []model.CapabilitySlug) bool {
	for _, cap := range c.Capabilities {
		for _, w := range want {
			if cap == w {
				return true
			}
		}
	}
	return false
}

func hasFacilityInAny(c model.Company, states []model.StateCode) bool {
	for _, fac := range c.Facilities {
		for _, st := range states {
			if fac.State == st {
				return true
			}
		}
	}
	return false
}

func (s *Store) SearchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Company
	if dir == model.PagePrev {
		for i := len(s.companies) - 1; i >= 0 && len(out) < limit; i-- {
			c := s.companies[i]
			if key != nil && !model.KeyOf(c).Less(*key) {
				continue
			}
			if matches(c, f) {
				out = append(out, c)
			}
		}
		return out, nil
	}
	for _, c := range s.companies {
		if len(out) >= limit {
			break
		}
		if key != nil && !key.Less(model.KeyOf(c)) {
			continue
		}
		if matches(c, f) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CountCompanies(ctx context.Context, f model.FilterState) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range s.companies {
		if matches(c, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) FacetCounts(ctx context.Context, f model.FilterState, axis model.FacetAxis) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, c := range s.companies {
		if !matches(c, f) {
			continue
		}
		switch axis {
		case model.AxisState:
			seen := map[model.StateCode]struct{}{}
			for _, fac := range c.Facilities {
				if fac.State == "" {
					continue
				}
				if _, ok := seen[fac.State]; ok {
					continue
				}
				seen[fac.State] = struct{}{}
				out[string(fac.State)]++
			}
		case model.AxisCapability:
			for _, cap := range c.Capabilities {
				out[string(cap)]++
			}
		case model.AxisVolume:
			if c.Volume != "" {
				out[string(c.Volume)]++
			}
		}
	}
	return out, nil
}

func (s *Store) MapFacilities(ctx context.Context, f model.FilterState, bbox model.BBox, limit int) ([]model.MapFacility, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var rows []model.MapFacility
	total := 0
	for _, c := range s.companies {
		if c.ID == 0 || c.Name == "" {
			continue
		}
		if !matches(c, f) {
			continue
		}
		for _, fac := range c.Facilities {
			if !fac.HasCoords() || !bbox.Contains(*fac.Lng, *fac.Lat) {
				continue
			}
			total++
			if len(rows) < limit {
				rows = append(rows, model.MapFacility{
					FacilityID:  fac.ID,
					CompanyID:   c.ID,
					CompanyName: c.Name,
					CompanySlug: c.Slug,
					State:       fac.State,
					Lng:         *fac.Lng,
					Lat:         *fac.Lat,
				})
			}
		}
	}
	return rows, total, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

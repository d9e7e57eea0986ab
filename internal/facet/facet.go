// Package facet computes per-axis candidate counts for the directory filters.
//
// The count attached to value v on axis A is the number of matches with every
// axis other than A applied and A constrained to exactly {v}. Selecting more
// values on A therefore never changes the displayed counts on A; clients can
// render "what would this option retrieve" without a re-query per checkbox.
package facet

import (
	"context"
	"fmt"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/store"
)

type Counter struct {
	store store.Store
}

func New(st store.Store) *Counter {
	return &Counter{store: st}
}

func (c *Counter) Counts(ctx context.Context, f model.FilterState) (model.FacetCounts, error) {
	out := model.FacetCounts{
		States:       map[model.StateCode]int{},
		Capabilities: map[model.CapabilitySlug]int{},
		Volumes:      map[model.VolumeTier]int{},
	}

	// each axis is swept with its own selection cleared; CertDefault stays
	// baked into the base predicate on every sweep
	states, err := c.store.FacetCounts(ctx, f.WithoutAxis(model.AxisState), model.AxisState)
	if err != nil {
		return model.FacetCounts{}, fmt.Errorf("state facets: %w", err)
	}
	for v, n := range states {
		out.States[model.StateCode(v)] = n
	}

	caps, err := c.store.FacetCounts(ctx, f.WithoutAxis(model.AxisCapability), model.AxisCapability)
	if err != nil {
		return model.FacetCounts{}, fmt.Errorf("capability facets: %w", err)
	}
	for v, n := range caps {
		out.Capabilities[model.CapabilitySlug(v)] = n
	}

	vols, err := c.store.FacetCounts(ctx, f.WithoutAxis(model.AxisVolume), model.AxisVolume)
	if err != nil {
		return model.FacetCounts{}, fmt.Errorf("volume facets: %w", err)
	}
	for v, n := range vols {
		out.Volumes[model.VolumeTier(v)] = n
	}
	// the volume domain is small and fixed; expose every tier
	for _, tier := range model.VolumeTiers() {
		if _, ok := out.Volumes[tier]; !ok {
			out.Volumes[tier] = 0
		}
	}

	// currently-selected values stay visible even when narrowing on other
	// axes drove them to zero
	for _, st := range f.States {
		if _, ok := out.States[st]; !ok {
			out.States[st] = 0
		}
	}
	for _, cp := range f.Capabilities {
		if _, ok := out.Capabilities[cp]; !ok {
			out.Capabilities[cp] = 0
		}
	}
	if f.Volume != "" {
		if _, ok := out.Volumes[f.Volume]; !ok {
			out.Volumes[f.Volume] = 0
		}
	}
	return out, nil
}

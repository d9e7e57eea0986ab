// Package model defines core domain types shared across the service.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// StateCode is a two-letter US state or district code, e.g. "WA".
type StateCode string

// CapabilitySlug identifies a manufacturing capability, e.g. "cnc-machining".
type CapabilitySlug string

// CertSlug identifies a certification, e.g. "iso-9001".
type CertSlug string

// VolumeTier is a production volume bracket.
type VolumeTier string

const (
	VolumePrototype VolumeTier = "prototype"
	VolumeLow       VolumeTier = "low"
	VolumeMedium    VolumeTier = "medium"
	VolumeHigh      VolumeTier = "high"
)

// FacetAxis names one independently countable filter dimension.
type FacetAxis string

const (
	AxisState      FacetAxis = "state"
	AxisCapability FacetAxis = "capability"
	AxisVolume     FacetAxis = "volume"
)

// PageDirection selects which side of a cursor a page is read from.
type PageDirection string

const (
	PageNext PageDirection = "next"
	PagePrev PageDirection = "prev"
)

type BBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

func (b BBox) Contains(lng, lat float64) bool {
	return lng >= b.MinLng && lng <= b.MaxLng && lat >= b.MinLat && lat <= b.MaxLat
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLng, b.MinLat, b.MaxLng, b.MaxLat)
}

// FilterState is the canonical, validated form of a directory query. An empty
// set on any axis means "no constraint on that axis". CertDefault is implied
// by the route, applied on every axis, and never surfaced as a facet.
type FilterState struct {
	States       []StateCode
	Capabilities []CapabilitySlug
	CertDefault  CertSlug
	Volume       VolumeTier
	BBox         *BBox
}

// WithoutAxis returns a copy with the selection on one axis cleared. Facet
// counting uses this to hold every other axis fixed while sweeping one.
func (f FilterState) WithoutAxis(axis FacetAxis) FilterState {
	out := f
	switch axis {
	case AxisState:
		out.States = nil
	case AxisCapability:
		out.Capabilities = nil
	case AxisVolume:
		out.Volume = ""
	}
	return out
}

// CanonicalKey renders the filter state as a stable string, independent of the
// order query parameters arrived in. It seeds both cache keys and the cursor
// filter hash, so two requests with the same constraints share one key.
func (f FilterState) CanonicalKey() string {
	states := make([]string, len(f.States))
	for i, s := range f.States {
		states[i] = string(s)
	}
	sort.Strings(states)

	caps := make([]string, len(f.Capabilities))
	for i, c := range f.Capabilities {
		caps[i] = string(c)
	}
	sort.Strings(caps)

	var b strings.Builder
	b.WriteString("states=")
	b.WriteString(strings.Join(states, ","))
	b.WriteString("|caps=")
	b.WriteString(strings.Join(caps, ","))
	b.WriteString("|cert=")
	b.WriteString(string(f.CertDefault))
	b.WriteString("|vol=")
	b.WriteString(string(f.Volume))
	if f.BBox != nil {
		b.WriteString("|bbox=")
		b.WriteString(f.BBox.String())
	}
	return b.String()
}

// Facility is one physical location owned by a company. Coordinates are
// optional; a facility without them never reaches the map path.
type Facility struct {
	ID    int64     `json:"id"`
	State StateCode `json:"state"`
	Lng   *float64  `json:"lng,omitempty"`
	Lat   *float64  `json:"lat,omitempty"`
}

func (f Facility) HasCoords() bool { return f.Lng != nil && f.Lat != nil }

type Company struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Volume         VolumeTier       `json:"volume,omitempty"`
	Capabilities   []CapabilitySlug `json:"capabilities,omitempty"`
	Certifications []CertSlug       `json:"certifications,omitempty"`
	Facilities     []Facility       `json:"facilities,omitempty"`
}

// SortKey is the total order every listing and truncation in the service
// shares: case-folded company name first, immutable id as the tiebreak.
type SortKey struct {
	Name string
	ID   int64
}

func KeyOf(c Company) SortKey {
	return SortKey{Name: strings.ToLower(c.Name), ID: c.ID}
}

func (k SortKey) Less(o SortKey) bool {
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.ID < o.ID
}

// MapFacility is a row-per-facility projection used by the map path. It is
// request-scoped and never persisted.
type MapFacility struct {
	FacilityID  int64     `json:"facilityId"`
	CompanyID   int64     `json:"companyId"`
	CompanyName string    `json:"companyName"`
	CompanySlug string    `json:"companySlug"`
	State       StateCode `json:"state"`
	Lng         float64   `json:"lng"`
	Lat         float64   `json:"lat"`
}

type ResultPage struct {
	Records    []Company `json:"records"`
	TotalCount int       `json:"totalCount"`
	HasNext    bool      `json:"hasNext"`
	HasPrev    bool      `json:"hasPrev"`
	NextCursor string    `json:"nextCursor,omitempty"`
	PrevCursor string    `json:"prevCursor,omitempty"`
}

// FacetCounts carries candidate-value counts per axis. Each axis is computed
// with its own selection ignored, so the numbers answer "what would selecting
// this value retrieve" without a re-query per checkbox.
type FacetCounts struct {
	States       map[StateCode]int      `json:"states"`
	Capabilities map[CapabilitySlug]int `json:"capabilities"`
	Volumes      map[VolumeTier]int     `json:"volumes"`
}

type Cluster struct {
	ID         int        `json:"id"`
	Centroid   [2]float64 `json:"centroid"` // lng, lat
	PointCount int        `json:"pointCount"`
}

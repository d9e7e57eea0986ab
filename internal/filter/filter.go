// Package filter normalizes raw query parameters into a validated FilterState.
package filter

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mklincoln/factorymap/internal/core/model"
)

// Exact messages surfaced to clients as 400s. The bbox and zoom come from a
// live map viewport rather than a bookmarked link, so they fail hard instead
// of being dropped like stale facet values.
var (
	ErrInvalidBoundingBox = errors.New("bbox must be [minLng,minLat,maxLng,maxLat]")
	ErrInvalidZoom        = errors.New("zoom must be a number between 0 and 22")
)

// RouteDefaults carries constraints implied by the URL path rather than query
// parameters, e.g. /suppliers/iso-9001/wa.
type RouteDefaults struct {
	Cert  model.CertSlug
	State model.StateCode
}

// Normalize turns untyped query parameters into a FilterState. Unknown keys
// are ignored. Invalid enum members are dropped silently. A malformed bbox is
// the one hard failure; see ErrInvalidBoundingBox.
func Normalize(params map[string][]string, def RouteDefaults) (model.FilterState, error) {
	var f model.FilterState

	seenStates := map[model.StateCode]struct{}{}
	for _, raw := range params["state"] {
		s := model.StateCode(strings.ToUpper(strings.TrimSpace(raw)))
		if !model.ValidState(s) {
			continue
		}
		if _, ok := seenStates[s]; ok {
			continue
		}
		seenStates[s] = struct{}{}
		f.States = append(f.States, s)
	}

	seenCaps := map[model.CapabilitySlug]struct{}{}
	for _, raw := range params["capability"] {
		c := model.CapabilitySlug(strings.ToLower(strings.TrimSpace(raw)))
		if !model.ValidCapability(c) {
			continue
		}
		if _, ok := seenCaps[c]; ok {
			continue
		}
		seenCaps[c] = struct{}{}
		f.Capabilities = append(f.Capabilities, c)
	}

	for _, raw := range params["volume"] {
		v := model.VolumeTier(strings.ToLower(strings.TrimSpace(raw)))
		if model.ValidVolume(v) {
			f.Volume = v
			break
		}
	}

	if def.Cert != "" && model.ValidCert(def.Cert) {
		f.CertDefault = def.Cert
	}
	if def.State != "" && model.ValidState(def.State) {
		if _, ok := seenStates[def.State]; !ok {
			f.States = append(f.States, def.State)
		}
	}

	sort.Slice(f.States, func(i, j int) bool { return f.States[i] < f.States[j] })
	sort.Slice(f.Capabilities, func(i, j int) bool { return f.Capabilities[i] < f.Capabilities[j] })

	if raw := first(params["bbox"]); raw != "" {
		bb, err := ParseBBox(raw)
		if err != nil {
			return model.FilterState{}, err
		}
		f.BBox = &bb
	}

	return f, nil
}

// ParseBBox expects exactly four comma-separated finite floats forming a
// non-degenerate box.
func ParseBBox(raw string) (model.BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return model.BBox{}, ErrInvalidBoundingBox
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return model.BBox{}, ErrInvalidBoundingBox
		}
		vals[i] = v
	}
	bb := model.BBox{MinLng: vals[0], MinLat: vals[1], MaxLng: vals[2], MaxLat: vals[3]}
	if bb.MinLng >= bb.MaxLng || bb.MinLat >= bb.MaxLat {
		return model.BBox{}, ErrInvalidBoundingBox
	}
	return bb, nil
}

// ParseZoom accepts a numeric zoom in [0,22] and truncates to an integer
// level.
func ParseZoom(raw string) (int, error) {
	z, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, ErrInvalidZoom
	}
	if z < 0 || z > 22 {
		return 0, ErrInvalidZoom
	}
	return int(z), nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[0])
}

// Package cluster groups map facilities into zoom-dependent spatial clusters.
//
// Points are bucketed by their H3 cell at the resolution derived from the
// zoom level. Buckets holding at least MinClusterSize points collapse into a
// single cluster at the members' mean coordinate; smaller buckets surface
// their members individually as leaves. The whole computation is pure and
// in-memory: identical inputs yield identical cluster ids, centroids and leaf
// ordering.
package cluster

import (
	"sort"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mklincoln/factorymap/internal/core/model"
)

// MinClusterSize is the density threshold below which points stay unclustered.
const MinClusterSize = 2

type Result struct {
	Clusters []model.Cluster     `json:"clusters"`
	Leaves   []model.MapFacility `json:"leaves"`
}

// Cluster buckets the facilities inside bbox at the grid resolution for zoom.
// Cluster ids are assigned in sorted cell order starting at 1, so two calls
// with the same input agree on ids. Leaves come back in (company name,
// facility id) order.
func Cluster(facilities []model.MapFacility, zoom int, bbox model.BBox) Result {
	res := resForZoom(zoom)

	out := Result{
		Clusters: []model.Cluster{},
		Leaves:   []model.MapFacility{},
	}

	buckets := map[string][]model.MapFacility{}
	for _, fac := range facilities {
		// defense in depth; the resolver already bounds its rows
		if !bbox.Contains(fac.Lng, fac.Lat) {
			continue
		}
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: fac.Lat, Lng: fac.Lng}, res)
		if err != nil {
			// unindexable coordinates fall through as leaves
			out.Leaves = append(out.Leaves, fac)
			continue
		}
		key := cell.String()
		buckets[key] = append(buckets[key], fac)
	}

	cells := make([]string, 0, len(buckets))
	for c := range buckets {
		cells = append(cells, c)
	}
	sort.Strings(cells)

	id := 0
	for _, c := range cells {
		members := buckets[c]
		if len(members) < MinClusterSize {
			out.Leaves = append(out.Leaves, members...)
			continue
		}
		var sumLng, sumLat float64
		for _, m := range members {
			sumLng += m.Lng
			sumLat += m.Lat
		}
		id++
		out.Clusters = append(out.Clusters, model.Cluster{
			ID:         id,
			Centroid:   [2]float64{sumLng / float64(len(members)), sumLat / float64(len(members))},
			PointCount: len(members),
		})
	}

	sort.Slice(out.Leaves, func(i, j int) bool {
		a, b := out.Leaves[i], out.Leaves[j]
		an, bn := strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName)
		if an != bn {
			return an < bn
		}
		return a.FacilityID < b.FacilityID
	})
	return out
}

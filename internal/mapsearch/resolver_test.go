package mapsearch

import (
	"context"
	"fmt"
	"testing"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/store/memstore"
)

func fptr(v float64) *float64 { return &v }

// one company with n facilities spread across the box
func gridCorpus(n int) []model.Company {
	facs := make([]model.Facility, n)
	for i := 0; i < n; i++ {
		lng := -120.0 + float64(i%100)*0.01
		lat := 40.0 + float64(i/100)*0.01
		facs[i] = model.Facility{ID: int64(i + 1), State: "NV", Lng: fptr(lng), Lat: fptr(lat)}
	}
	return []model.Company{{ID: 1, Name: "Grid Manufacturing", Facilities: facs}}
}

var wide = model.BBox{MinLng: -125, MinLat: 35, MaxLng: -110, MaxLat: 45}

func TestResolve_UnderCap(t *testing.T) {
	r := New(memstore.New(gridCorpus(10)), 0)
	rows, truncated, total, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if truncated || total != 10 || len(rows) != 10 {
		t.Fatalf("rows=%d total=%d truncated=%v", len(rows), total, truncated)
	}
}

func TestResolve_ExactlyAtCapNotTruncated(t *testing.T) {
	r := New(memstore.New(gridCorpus(DefaultRowCap)), 0)
	rows, truncated, total, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if truncated {
		t.Fatalf("exactly the cap must not report truncation")
	}
	if len(rows) != DefaultRowCap || total != DefaultRowCap {
		t.Fatalf("rows=%d total=%d", len(rows), total)
	}
}

func TestResolve_OverCapTruncates(t *testing.T) {
	r := New(memstore.New(gridCorpus(DefaultRowCap+1)), 0)
	rows, truncated, total, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !truncated {
		t.Fatalf("cap exceeded but truncated=false")
	}
	if len(rows) != DefaultRowCap || total != DefaultRowCap+1 {
		t.Fatalf("rows=%d total=%d", len(rows), total)
	}
}

// Truncation keeps the deterministic (name, id) prefix: two identical calls
// return the same rows.
func TestResolve_TruncationDeterministic(t *testing.T) {
	r := New(memstore.New(gridCorpus(20)), 5)
	a, _, _, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, _, _, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(a) != 5 || len(b) != 5 {
		t.Fatalf("rows=%d/%d, want 5", len(a), len(b))
	}
	for i := range a {
		if a[i].FacilityID != b[i].FacilityID {
			t.Fatalf("row %d differs: %d vs %d", i, a[i].FacilityID, b[i].FacilityID)
		}
	}
}

func TestResolve_SparseMarkersAreValid(t *testing.T) {
	corpus := gridCorpus(3)
	// a company with no coordinates anywhere contributes nothing to the map
	corpus = append(corpus, model.Company{
		ID: 2, Name: "Paper Only LLC",
		Facilities: []model.Facility{{ID: 900, State: "DE"}},
	})
	r := New(memstore.New(corpus), 0)
	rows, truncated, total, err := r.Resolve(context.Background(), model.FilterState{}, wide)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if truncated || total != 3 || len(rows) != 3 {
		t.Fatalf("rows=%d total=%d truncated=%v", len(rows), total, truncated)
	}
	for i, row := range rows {
		if row.CompanyName == "" || row.FacilityID == 0 {
			t.Fatalf("row %d incomplete: %s", i, fmt.Sprintf("%+v", row))
		}
	}
}

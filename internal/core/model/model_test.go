package model

import "testing"

func TestCanonicalKey_OrderIndependent(t *testing.T) {
	a := FilterState{
		States:       []StateCode{"WA", "OR"},
		Capabilities: []CapabilitySlug{"tooling", "casting"},
		CertDefault:  "iso-9001",
		Volume:       VolumeLow,
	}
	b := FilterState{
		States:       []StateCode{"OR", "WA"},
		Capabilities: []CapabilitySlug{"casting", "tooling"},
		CertDefault:  "iso-9001",
		Volume:       VolumeLow,
	}
	if a.CanonicalKey() != b.CanonicalKey() {
		t.Fatalf("keys differ:\n%s\n%s", a.CanonicalKey(), b.CanonicalKey())
	}
}

func TestCanonicalKey_DistinguishesFilters(t *testing.T) {
	a := FilterState{States: []StateCode{"WA"}}
	b := FilterState{States: []StateCode{"OR"}}
	if a.CanonicalKey() == b.CanonicalKey() {
		t.Fatalf("distinct filters share key %s", a.CanonicalKey())
	}
	c := FilterState{Capabilities: []CapabilitySlug{"casting"}}
	if a.CanonicalKey() == c.CanonicalKey() {
		t.Fatalf("axes collide: %s", a.CanonicalKey())
	}
}

func TestCanonicalKey_BBoxIncluded(t *testing.T) {
	with := FilterState{BBox: &BBox{MinLng: -125, MinLat: 25, MaxLng: -66, MaxLat: 49}}
	without := FilterState{}
	if with.CanonicalKey() == without.CanonicalKey() {
		t.Fatalf("bbox not part of the key")
	}
}

func TestWithoutAxis(t *testing.T) {
	f := FilterState{
		States:       []StateCode{"WA"},
		Capabilities: []CapabilitySlug{"casting"},
		CertDefault:  "iso-9001",
		Volume:       VolumeHigh,
	}
	if got := f.WithoutAxis(AxisState); got.States != nil || got.Volume != VolumeHigh {
		t.Fatalf("state axis: got %+v", got)
	}
	if got := f.WithoutAxis(AxisCapability); got.Capabilities != nil || len(got.States) != 1 {
		t.Fatalf("capability axis: got %+v", got)
	}
	if got := f.WithoutAxis(AxisVolume); got.Volume != "" || got.CertDefault != "iso-9001" {
		t.Fatalf("volume axis: got %+v", got)
	}
}

func TestSortKey(t *testing.T) {
	k := KeyOf(Company{ID: 7, Name: "Acme Tooling"})
	if k.Name != "acme tooling" || k.ID != 7 {
		t.Fatalf("got %+v", k)
	}
	a := SortKey{Name: "acme", ID: 2}
	b := SortKey{Name: "acme", ID: 3}
	c := SortKey{Name: "zenith", ID: 1}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("id tiebreak broken")
	}
	if !a.Less(c) || c.Less(a) {
		t.Fatalf("name order broken")
	}
}

func TestBBoxContains(t *testing.T) {
	bb := BBox{MinLng: -10, MinLat: -5, MaxLng: 10, MaxLat: 5}
	if !bb.Contains(0, 0) || !bb.Contains(-10, 5) {
		t.Fatalf("edge points should be inside")
	}
	if bb.Contains(11, 0) || bb.Contains(0, -6) {
		t.Fatalf("outside points reported inside")
	}
}

package cluster

import "testing"

func TestResForZoom_Bounds(t *testing.T) {
	if got := resForZoom(0); got != 0 {
		t.Fatalf("zoom 0 -> %d, want 0", got)
	}
	if got := resForZoom(22); got != 15 {
		t.Fatalf("zoom 22 -> %d, want 15", got)
	}
	if got := resForZoom(-3); got != 0 {
		t.Fatalf("zoom -3 -> %d, want clamped to 0", got)
	}
	if got := resForZoom(40); got != 15 {
		t.Fatalf("zoom 40 -> %d, want clamped to 15", got)
	}
}

func TestResForZoom_Monotonic(t *testing.T) {
	prev := resForZoom(0)
	for z := 1; z <= 22; z++ {
		r := resForZoom(z)
		if r < prev {
			t.Fatalf("resolution dropped from %d to %d at zoom %d", prev, r, z)
		}
		if r < 0 || r > 15 {
			t.Fatalf("zoom %d -> resolution %d out of range", z, r)
		}
		prev = r
	}
}

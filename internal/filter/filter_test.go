package filter

import (
	"errors"
	"testing"

	"github.com/mklincoln/factorymap/internal/core/model"
)

func TestNormalize_DropsInvalidAndDedupes(t *testing.T) {
	params := map[string][]string{
		"state":      {"wa", "WA", "XX", " or "},
		"capability": {"CNC-Machining", "cnc-machining", "warp-drive"},
		"volume":     {"bogus", "low"},
		"utm_source": {"newsletter"},
	}
	f, err := Normalize(params, RouteDefaults{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.States) != 2 || f.States[0] != "OR" || f.States[1] != "WA" {
		t.Fatalf("states = %v, want [OR WA]", f.States)
	}
	if len(f.Capabilities) != 1 || f.Capabilities[0] != "cnc-machining" {
		t.Fatalf("capabilities = %v, want [cnc-machining]", f.Capabilities)
	}
	if f.Volume != model.VolumeLow {
		t.Fatalf("volume = %q, want low", f.Volume)
	}
}

func TestNormalize_AllInvalidMeansUnconstrained(t *testing.T) {
	f, err := Normalize(map[string][]string{"state": {"ZZ", "QQ"}}, RouteDefaults{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.States) != 0 {
		t.Fatalf("states = %v, want empty", f.States)
	}
}

func TestNormalize_RouteDefaults(t *testing.T) {
	f, err := Normalize(map[string][]string{"state": {"OR"}}, RouteDefaults{
		Cert:  "iso-9001",
		State: "WA",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.CertDefault != "iso-9001" {
		t.Fatalf("cert default = %q, want iso-9001", f.CertDefault)
	}
	if len(f.States) != 2 || f.States[0] != "OR" || f.States[1] != "WA" {
		t.Fatalf("states = %v, want [OR WA]", f.States)
	}
}

func TestNormalize_RouteStateNotDuplicated(t *testing.T) {
	f, err := Normalize(map[string][]string{"state": {"WA"}}, RouteDefaults{State: "WA"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.States) != 1 {
		t.Fatalf("states = %v, want single WA", f.States)
	}
}

func TestNormalize_BBoxFailsHard(t *testing.T) {
	_, err := Normalize(map[string][]string{"bbox": {"1,2,3"}}, RouteDefaults{})
	if !errors.Is(err, ErrInvalidBoundingBox) {
		t.Fatalf("got err %v, want ErrInvalidBoundingBox", err)
	}
}

func TestParseBBox(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"-125,25,-66,49", true},
		{" -125, 25, -66, 49 ", true},
		{"-125,25,-66", false},
		{"-125,25,-66,49,0", false},
		{"a,25,-66,49", false},
		{"NaN,25,-66,49", false},
		{"-66,25,-125,49", false}, // min >= max
		{"-125,49,-66,25", false},
		{"", false},
	}
	for _, tc := range cases {
		bb, err := ParseBBox(tc.raw)
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected err %v", tc.raw, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidBoundingBox) {
				t.Fatalf("%q: got err %v, want ErrInvalidBoundingBox", tc.raw, err)
			}
			continue
		}
		if bb.MinLng != -125 || bb.MaxLat != 49 {
			t.Fatalf("%q: parsed %+v", tc.raw, bb)
		}
	}
}

func TestParseBBox_ErrorMessage(t *testing.T) {
	_, err := ParseBBox("nope")
	if err == nil || err.Error() != "bbox must be [minLng,minLat,maxLng,maxLat]" {
		t.Fatalf("got %v", err)
	}
}

func TestParseZoom(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"22", 22, true},
		{"9.7", 9, true},
		{"-1", 0, false},
		{"23", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		z, err := ParseZoom(tc.raw)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected err %v", tc.raw, err)
			}
			if z != tc.want {
				t.Fatalf("%q: got %d, want %d", tc.raw, z, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidZoom) {
			t.Fatalf("%q: got err %v, want ErrInvalidZoom", tc.raw, err)
		}
	}
}

func TestParseZoom_ErrorMessage(t *testing.T) {
	_, err := ParseZoom("99")
	if err == nil || err.Error() != "zoom must be a number between 0 and 22" {
		t.Fatalf("got %v", err)
	}
}

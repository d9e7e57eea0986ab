package model

// Enumerated filter domains. Values not present here are dropped during
// normalization; directory filters arrive from bookmarked URLs and routinely
// go stale, so unknown members are recoverable, not errors.

var stateCodes = map[StateCode]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

var capabilitySlugs = map[CapabilitySlug]struct{}{
	"cnc-machining":          {},
	"injection-molding":      {},
	"sheet-metal":            {},
	"casting":                {},
	"forging":                {},
	"extrusion":              {},
	"stamping":               {},
	"welding":                {},
	"additive-manufacturing": {},
	"composites":             {},
	"coating":                {},
	"tooling":                {},
	"assembly":               {},
	"pcb-assembly":           {},
	"wire-harness":           {},
}

var certSlugs = map[CertSlug]struct{}{
	"iso-9001":       {},
	"as9100":         {},
	"iso-13485":      {},
	"iatf-16949":     {},
	"itar":           {},
	"nadcap":         {},
	"fda-registered": {},
	"ul-listed":      {},
}

var volumeTiers = map[VolumeTier]struct{}{
	VolumePrototype: {},
	VolumeLow:       {},
	VolumeMedium:    {},
	VolumeHigh:      {},
}

func ValidState(s StateCode) bool {
	_, ok := stateCodes[s]
	return ok
}

func ValidCapability(c CapabilitySlug) bool {
	_, ok := capabilitySlugs[c]
	return ok
}

func ValidCert(c CertSlug) bool {
	_, ok := certSlugs[c]
	return ok
}

func ValidVolume(v VolumeTier) bool {
	_, ok := volumeTiers[v]
	return ok
}

// VolumeTiers lists every tier in ascending production-volume order.
func VolumeTiers() []VolumeTier {
	return []VolumeTier{VolumePrototype, VolumeLow, VolumeMedium, VolumeHigh}
}

package schedule

import "strings"

// OffsetResolver maps a timezone abbreviation to a signed UTC offset in
// whole hours. ok is false for unknown abbreviations.
type OffsetResolver interface {
	Offset(abbrev string) (hours int, ok bool)
}

// FixedOffsets is a static abbreviation table. It ignores daylight saving:
// PT is always -7, so winter dates written as "PT" resolve an hour off.
type FixedOffsets map[string]int

// DefaultOffsets is the table used when no resolver is configured.
var DefaultOffsets = FixedOffsets{
	"PT": -7, "PDT": -7, "PST": -8,
	"MT": -6, "MDT": -6, "MST": -7,
	"CT": -5, "CDT": -5, "CST": -6,
	"ET": -4, "EDT": -4, "EST": -5,
	"AKT": -8, "AKDT": -8, "AKST": -9,
	"HST": -10,
	"UTC": 0, "GMT": 0, "Z": 0,
	"BST": 1, "CET": 1, "CEST": 2,
	"EET": 2, "EEST": 3,
	"IST": 5,
	"SGT": 8,
	"JST": 9,
	"AEST": 10, "AEDT": 11,
}

// Offset implements OffsetResolver. Lookups are case-insensitive.
func (f FixedOffsets) Offset(abbrev string) (int, bool) {
	h, ok := f[strings.ToUpper(strings.TrimSpace(abbrev))]
	return h, ok
}

type layered struct {
	overrides FixedOffsets
	base      OffsetResolver
}

// WithOverrides consults overrides before base. Override keys are
// normalised to upper case.
func WithOverrides(base OffsetResolver, overrides map[string]int) OffsetResolver {
	if len(overrides) == 0 {
		return base
	}
	norm := make(FixedOffsets, len(overrides))
	for k, v := range overrides {
		norm[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return layered{overrides: norm, base: base}
}

func (l layered) Offset(abbrev string) (int, bool) {
	if h, ok := l.overrides.Offset(abbrev); ok {
		return h, true
	}
	if l.base == nil {
		return 0, false
	}
	return l.base.Offset(abbrev)
}

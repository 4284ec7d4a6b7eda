package domain

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// NoDataColor is the fixed gray returned for missing values. It sits outside
// every palette in the catalog so "no data" never reads as a real anomaly.
const NoDataColor = "#bdbdbd"

// ColorBrewer RdBu endpoints shared by all catalog ramps.
const (
	hexBlue    = "#2166ac"
	hexNeutral = "#f7f7f7"
	hexRed     = "#b2182b"
)

// ramp is a three-color diverging control set: the color drawn at -absMax,
// at zero, and at +absMax.
type ramp struct {
	negative colorful.Color
	neutral  colorful.Color
	positive colorful.Color
}

var palettes = map[PaletteFamily]ramp{
	PaletteRdBuReversed: {negative: mustHex(hexBlue), neutral: mustHex(hexNeutral), positive: mustHex(hexRed)},
	PaletteBuRd:         {negative: mustHex(hexBlue), neutral: mustHex(hexNeutral), positive: mustHex(hexRed)},
	PaletteRdBu:         {negative: mustHex(hexRed), neutral: mustHex(hexNeutral), positive: mustHex(hexBlue)},
}

// ColorScale maps anomaly values to hex colors over a symmetric domain.
// A scale is immutable after construction and safe for concurrent use.
type ColorScale struct {
	min float64
	mid float64
	max float64

	ramp     ramp
	constant bool // metadata-less fallback: every value resolves to neutral
}

// BuildColorScale builds a diverging scale from index metadata and a value
// sample. The palette comes from meta.PaletteFamily alone; the anomaly
// direction never participates (see the package doc). Degenerate inputs
// produce well-defined fallbacks:
//
//   - nil metadata → constant neutral scale over [0, 0.5, 1]
//   - empty/all-invalid sample → domain [-1, 0, 1]
//   - unknown palette family → blue → white → red
func BuildColorScale(meta *IndexMetadata, values []float64) *ColorScale {
	if meta == nil {
		return &ColorScale{
			min:      0,
			mid:      0.5,
			max:      1,
			ramp:     palettes[PaletteRdBuReversed],
			constant: true,
		}
	}

	absMax := sampleAbsMax(values)

	r, ok := palettes[meta.PaletteFamily]
	if !ok {
		r = palettes[PaletteRdBuReversed]
	}

	// PaletteApplication has a single defined mode ("diverging"); anything
	// else in the catalog is treated as diverging rather than rejected.
	return &ColorScale{
		min:  -absMax,
		mid:  0,
		max:  absMax,
		ramp: r,
	}
}

// sampleAbsMax returns max(|min|, |max|) over the valid values, falling back
// to 1 when the sample is empty or flat at zero so the domain never
// degenerates to a point.
func sampleAbsMax(values []float64) float64 {
	valid := ValidValues(values)
	if len(valid) == 0 {
		return 1
	}

	absMax := 0.0
	for _, v := range valid {
		if a := math.Abs(v); a > absMax {
			absMax = a
		}
	}
	if absMax == 0 {
		return 1
	}
	return absMax
}

// Domain returns the scale's control points (min, mid, max).
func (s *ColorScale) Domain() (min, mid, max float64) {
	return s.min, s.mid, s.max
}

// Resolve maps a value to a lowercase #rrggbb hex color. NaN resolves to
// NoDataColor. Values outside the domain are clamped to the endpoints, so
// out-of-sample values render as the nearest extreme rather than an
// extrapolated color.
func (s *ColorScale) Resolve(value float64) string {
	if math.IsNaN(value) {
		return NoDataColor
	}
	if s.constant {
		return s.ramp.neutral.Hex()
	}

	if value <= s.min {
		return s.ramp.negative.Hex()
	}
	if value >= s.max {
		return s.ramp.positive.Hex()
	}
	if value == s.mid {
		return s.ramp.neutral.Hex()
	}

	// Interpolate in CIE LAB for perceptual evenness; Clamped guards the
	// out-of-gamut excursions LAB blending can produce.
	if value < s.mid {
		t := (value - s.min) / (s.mid - s.min)
		return s.ramp.negative.BlendLab(s.ramp.neutral, t).Clamped().Hex()
	}
	t := (value - s.mid) / (s.max - s.mid)
	return s.ramp.neutral.BlendLab(s.ramp.positive, t).Clamped().Hex()
}

// ResolvePointer is Resolve for optional values: nil resolves to NoDataColor.
func (s *ColorScale) ResolvePointer(value *float64) string {
	if value == nil {
		return NoDataColor
	}
	return s.Resolve(*value)
}

// mustHex parses a hex color constant. Only called on the package-level
// palette tables, where a parse failure is a programming error.
func mustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

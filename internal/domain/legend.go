package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultLegendSteps is the swatch count the dashboard renders by default.
const DefaultLegendSteps = 7

// LegendEntry is one discrete swatch sampled from a color scale.
type LegendEntry struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

// GenerateLegendItems samples the scale at steps evenly spaced points from
// domain min to domain max inclusive. Labels are the sample values formatted
// to two decimals. Fewer than 2 steps cannot span a domain, so steps is
// clamped up to 2.
func GenerateLegendItems(scale *ColorScale, steps int) []LegendEntry {
	if steps < 2 {
		steps = 2
	}

	min, _, max := scale.Domain()
	values := floats.Span(make([]float64, steps), min, max)

	entries := make([]LegendEntry, steps)
	for i, v := range values {
		entries[i] = LegendEntry{
			Value: v,
			Color: scale.Resolve(v),
			Label: fmt.Sprintf("%.2f", v),
		}
	}
	return entries
}

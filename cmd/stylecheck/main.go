// Command stylecheck runs offline integrity checks on the styling engine:
// domain symmetry, palette resolution, direction independence, legend and
// statistics conventions, and district aggregation. It needs no upstream API
// and is meant as a fast smoke check after engine changes.
//
// Usage:
//
//	go run ./cmd/stylecheck
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
)

// phase tracks pass/fail for one check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println("=== Styling Engine Integrity Check ===")
	fmt.Println()

	phases := []*phase{
		checkDomainSymmetry(),
		checkPaletteResolution(),
		checkDirectionIndependence(),
		checkLegendAndStatistics(),
		checkDistrictAggregation(),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}

func meta(family domain.PaletteFamily, direction string) *domain.IndexMetadata {
	return &domain.IndexMetadata{
		Code:               "check_index",
		PaletteFamily:      family,
		PaletteApplication: domain.PaletteDiverging,
		Direction:          direction,
	}
}

// ── Phase 1: Domain Symmetry ──

func checkDomainSymmetry() *phase {
	p := &phase{name: "Phase 1: Domain Symmetry"}

	cases := []struct {
		name    string
		values  []float64
		wantMax float64
	}{
		{"positive-dominant sample", []float64{-2, 1, 7}, 7},
		{"negative-dominant sample", []float64{-9, 3}, 9},
		{"empty sample", nil, 1},
		{"all-zero sample", []float64{0, 0, 0}, 1},
		{"all-NaN sample", []float64{math.NaN(), math.NaN()}, 1},
	}
	for _, c := range cases {
		scale := domain.BuildColorScale(meta(domain.PaletteRdBuReversed, "positive_bad"), c.values)
		min, mid, max := scale.Domain()
		if min != -c.wantMax || mid != 0 || max != c.wantMax {
			p.errorf("%s: domain (%g, %g, %g), expected (%g, 0, %g)", c.name, min, mid, max, -c.wantMax, c.wantMax)
		}
	}

	// Metadata-less fallback keeps a fixed non-degenerate domain.
	min, mid, max := domain.BuildColorScale(nil, []float64{1, 2}).Domain()
	if min != 0 || mid != 0.5 || max != 1 {
		p.errorf("nil metadata: domain (%g, %g, %g), expected (0, 0.5, 1)", min, mid, max)
	}

	return p
}

// ── Phase 2: Palette Resolution ──

func checkPaletteResolution() *phase {
	p := &phase{name: "Phase 2: Palette Resolution"}

	const (
		blue    = "#2166ac"
		neutral = "#f7f7f7"
		red     = "#b2182b"
	)
	values := []float64{-10, 10}

	cases := []struct {
		family                  domain.PaletteFamily
		negative, mid, positive string
	}{
		{domain.PaletteRdBuReversed, blue, neutral, red},
		{domain.PaletteBuRd, blue, neutral, red},
		{domain.PaletteRdBu, red, neutral, blue},
		{domain.PaletteFamily("what_is_this"), blue, neutral, red},
	}
	for _, c := range cases {
		scale := domain.BuildColorScale(meta(c.family, "positive_bad"), values)
		checkColor(p, string(c.family), scale.Resolve(-10), c.negative, "negative endpoint")
		checkColor(p, string(c.family), scale.Resolve(0), c.mid, "midpoint")
		checkColor(p, string(c.family), scale.Resolve(10), c.positive, "positive endpoint")

		// Out-of-domain values clamp to the endpoints.
		checkColor(p, string(c.family), scale.Resolve(-999), c.negative, "clamped low")
		checkColor(p, string(c.family), scale.Resolve(999), c.positive, "clamped high")

		checkColor(p, string(c.family), scale.Resolve(math.NaN()), domain.NoDataColor, "NaN")
		checkColor(p, string(c.family), scale.ResolvePointer(nil), domain.NoDataColor, "nil pointer")
	}

	return p
}

func checkColor(p *phase, family, got, want, what string) {
	if got != want {
		p.errorf("%s: %s resolved to %s, expected %s", family, what, got, want)
	}
}

// ── Phase 3: Direction Independence ──
// Direction metadata must swap labels without moving a single color.

func checkDirectionIndependence() *phase {
	p := &phase{name: "Phase 3: Direction Independence"}

	values := []float64{-6, -2, 0, 3, 6}
	probes := []float64{-6, -4.5, -1, 0, 0.5, 2, 6}
	directions := []string{"positive_bad", "positive_good", "positive_warming", "negative_warming", "higher_worse", "lower_worse", "neutral", ""}

	base := domain.BuildColorScale(meta(domain.PaletteRdBuReversed, directions[0]), values)
	for _, dir := range directions[1:] {
		scale := domain.BuildColorScale(meta(domain.PaletteRdBuReversed, dir), values)
		for _, v := range probes {
			if got, want := scale.Resolve(v), base.Resolve(v); got != want {
				p.errorf("direction %q changed color at %g: %s vs %s", dir, v, got, want)
			}
		}
	}

	wantLabels := map[string]domain.Labels{
		"positive_bad":     {Positive: "Worse", Negative: "Better", Neutral: "No Change"},
		"positive_good":    {Positive: "Better", Negative: "Worse", Neutral: "No Change"},
		"positive_warming": {Positive: "Warmer", Negative: "Cooler", Neutral: "No Change"},
		"negative_warming": {Positive: "Cooler", Negative: "Warmer", Neutral: "No Change"},
		"higher_worse":     {Positive: "Worse", Negative: "Better", Neutral: "No Change"},
		"lower_worse":      {Positive: "Better", Negative: "Worse", Neutral: "No Change"},
		"neutral":          {Positive: "Increase", Negative: "Decrease", Neutral: "No Change"},
		"":                 {Positive: "Increase", Negative: "Decrease", Neutral: "No Change"},
	}
	for dir, want := range wantLabels {
		if got := domain.InterpretationLabels(dir); got != want {
			p.errorf("labels for %q: got %+v, expected %+v", dir, got, want)
		}
	}

	return p
}

// ── Phase 4: Legend and Statistics Conventions ──

func checkLegendAndStatistics() *phase {
	p := &phase{name: "Phase 4: Legend and Statistics"}

	scale := domain.BuildColorScale(meta(domain.PaletteRdBuReversed, "positive_bad"), []float64{-6, 6})

	legend := domain.GenerateLegendItems(scale, domain.DefaultLegendSteps)
	if len(legend) != domain.DefaultLegendSteps {
		p.errorf("legend: %d entries, expected %d", len(legend), domain.DefaultLegendSteps)
	} else {
		if legend[0].Value != -6 || legend[len(legend)-1].Value != 6 {
			p.errorf("legend endpoints: %g..%g, expected -6..6", legend[0].Value, legend[len(legend)-1].Value)
		}
		for i := 1; i < len(legend); i++ {
			if step := legend[i].Value - legend[i-1].Value; math.Abs(step-2) > 1e-9 {
				p.errorf("legend spacing at entry %d: %g, expected 2", i, step)
			}
		}
		if legend[0].Label != "-6.00" {
			p.errorf("legend label: %q, expected \"-6.00\"", legend[0].Label)
		}
	}

	// Requests below two entries are clamped, never rejected.
	if n := len(domain.GenerateLegendItems(scale, 0)); n != 2 {
		p.errorf("legend with 0 steps: %d entries, expected 2", n)
	}

	// Even-length samples take the upper of the two middle values.
	stats := domain.CalculateStatistics([]float64{4, 1, 3, 2})
	if stats.Median != 3 {
		p.errorf("median of [1 2 3 4]: %g, expected 3", stats.Median)
	}
	if stats.Min != 1 || stats.Max != 4 || stats.Mean != 2.5 {
		p.errorf("statistics of [1 2 3 4]: min=%g max=%g mean=%g", stats.Min, stats.Max, stats.Mean)
	}

	empty := domain.CalculateStatistics(nil)
	if empty.Min != 0 || empty.Max != 0 || empty.Mean != 0 || empty.Median != 0 {
		p.errorf("empty sample statistics not all zero: %+v", empty)
	}

	return p
}

// ── Phase 5: District Aggregation ──

func checkDistrictAggregation() *phase {
	p := &phase{name: "Phase 5: District Aggregation"}

	v1, v2 := 2.0, 6.0
	fc := domain.FeatureCollection{Features: []domain.Feature{
		{ID: "a", MunicipalityCode: "GM01", DistrictCode: "D1", DistrictName: "One", Value: &v1, AreaKm2: 10},
		{ID: "b", MunicipalityCode: "GM02", DistrictCode: "D1", DistrictName: "One", Value: &v2, AreaKm2: 30},
		{ID: "c", MunicipalityCode: "GM03", DistrictCode: "D1", DistrictName: "One", Value: nil, AreaKm2: 5},
		{ID: "d", MunicipalityCode: "GM04", DistrictCode: "", Value: &v1},
	}}

	aggregates := domain.AggregateByDistrict(fc)
	if len(aggregates) != 1 {
		p.errorf("aggregate count: %d, expected 1 (no-district feature skipped)", len(aggregates))
		return p
	}

	d1 := aggregates["D1"]
	if d1 == nil {
		p.errorf("district D1 missing")
		return p
	}
	if d1.Count != 3 {
		p.errorf("D1 count: %d, expected 3 (missing values still counted)", d1.Count)
	}
	if d1.AggregatedValue != 4 {
		p.errorf("D1 aggregated value: %g, expected mean 4", d1.AggregatedValue)
	}
	if d1.StdDev != 2 {
		p.errorf("D1 std dev: %g, expected population value 2", d1.StdDev)
	}
	if d1.TotalArea != 45 {
		p.errorf("D1 total area: %g, expected 45", d1.TotalArea)
	}

	if codes := domain.SortedDistrictCodes(aggregates); len(codes) != 1 || codes[0] != "D1" {
		p.errorf("sorted codes: %v", codes)
	}

	return p
}

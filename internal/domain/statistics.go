package domain

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Statistics summarizes a sample of anomaly values. All fields are zero for
// an empty or all-invalid sample; that is the documented degenerate default,
// not an error.
type Statistics struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// CalculateStatistics computes min, max, mean, and median over the valid
// entries of values. NaN and infinite entries are silently dropped.
func CalculateStatistics(values []float64) Statistics {
	valid := ValidValues(values)
	if len(valid) == 0 {
		return Statistics{}
	}

	// The filtered sample is non-empty, so the library calls cannot fail.
	minVal, _ := stats.Min(valid)
	maxVal, _ := stats.Max(valid)
	mean, _ := stats.Mean(valid)

	sorted := append([]float64(nil), valid...)
	sort.Float64s(sorted)

	return Statistics{
		Min:    minVal,
		Max:    maxVal,
		Mean:   mean,
		Median: sampleMedian(sorted),
	}
}

// ValidValues returns the finite entries of values, preserving order.
func ValidValues(values []float64) []float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}

// sampleMedian returns the element at index n/2 of a sorted sample. For
// even-length samples this is the upper-middle element, NOT the average of
// the two middle elements: [1,2,3,4] → 3. The dashboard has always shown
// that value, so the rule is preserved for compatibility.
func sampleMedian(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)/2]
}

// populationStdDev computes the population standard deviation (divide by n)
// of the valid entries of values. Returns 0 for samples smaller than one.
func populationStdDev(values []float64) float64 {
	valid := ValidValues(values)
	if len(valid) == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(valid)
	if err != nil {
		return 0
	}
	return sd
}

package domain

import (
	"math"
	"sort"
)

// DistrictMember is one municipality inside a district aggregate, trimmed to
// the fields the district table renders.
type DistrictMember struct {
	ID      string   `json:"id"`
	Code    string   `json:"municipality_code"`
	Name    string   `json:"municipality_name"`
	Value   *float64 `json:"value"`
	AreaKm2 float64  `json:"area_km2"`
}

// DistrictAggregate is the rollup of municipality values to one district.
// AggregatedValue is the mean: the statistically correct representative for
// anomaly values (summing anomalies over municipalities is meaningless).
type DistrictAggregate struct {
	Code    string           `json:"district_code"`
	Name    string           `json:"district_name"`
	Members []DistrictMember `json:"members"`

	Count     int     `json:"count"`
	TotalArea float64 `json:"total_area_km2"`

	AggregatedValue float64 `json:"aggregated_value"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Median          float64 `json:"median"`
	StdDev          float64 `json:"std_dev"`
}

// AggregateByDistrict groups features by district code and computes the
// per-district summary. Aggregates are built fresh on every call; there is
// no incremental update. Features without a district code are skipped, and
// missing areas count as 0. An empty collection yields an empty map.
func AggregateByDistrict(fc FeatureCollection) map[string]*DistrictAggregate {
	aggregates := make(map[string]*DistrictAggregate)
	valuesByDistrict := make(map[string][]float64)

	for _, f := range fc.Features {
		if f.DistrictCode == "" {
			continue
		}

		agg, ok := aggregates[f.DistrictCode]
		if !ok {
			agg = &DistrictAggregate{
				Code: f.DistrictCode,
				Name: f.DistrictName,
			}
			aggregates[f.DistrictCode] = agg
		}

		agg.Members = append(agg.Members, DistrictMember{
			ID:      f.ID,
			Code:    f.MunicipalityCode,
			Name:    f.MunicipalityName,
			Value:   f.Value,
			AreaKm2: f.AreaKm2,
		})
		agg.Count++
		agg.TotalArea += f.AreaKm2

		if f.Value != nil && !math.IsNaN(*f.Value) {
			valuesByDistrict[f.DistrictCode] = append(valuesByDistrict[f.DistrictCode], *f.Value)
		}
	}

	for code, agg := range aggregates {
		summarizeDistrict(agg, valuesByDistrict[code])
	}
	return aggregates
}

// summarizeDistrict fills the statistical fields from the district's valid
// values. A district with no valid values keeps all-zero statistics.
func summarizeDistrict(agg *DistrictAggregate, valid []float64) {
	if len(valid) == 0 {
		return
	}

	s := CalculateStatistics(valid)
	agg.AggregatedValue = s.Mean
	agg.Min = s.Min
	agg.Max = s.Max
	agg.Median = s.Median
	agg.StdDev = populationStdDev(valid)
}

// SortedDistrictCodes returns the aggregate keys in lexical order, for
// deterministic table and export rendering.
func SortedDistrictCodes(aggregates map[string]*DistrictAggregate) []string {
	codes := make([]string, 0, len(aggregates))
	for code := range aggregates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

package domain

import (
	"math"
	"time"
)

// Feature is one municipality record for a (index, scenario, period)
// selection. Value is nil when the upstream dataset has no model output for
// the municipality. Only Value, DistrictCode, DistrictName, and AreaKm2 are
// consumed by the engine; the rest are display fields passed through to the
// dashboard untouched.
type Feature struct {
	ID                string   `json:"id"`
	Value             *float64 `json:"value"`
	MunicipalityCode  string   `json:"municipality_code"`
	MunicipalityName  string   `json:"municipality_name"`
	DistrictCode      string   `json:"district_code"`
	DistrictName      string   `json:"district_name"`
	Province          string   `json:"province,omitempty"`
	AreaKm2           float64  `json:"area_km2"`
	CentroidLat       float64  `json:"centroid_lat,omitempty"`
	CentroidLon       float64  `json:"centroid_lon,omitempty"`
	Scenario          string   `json:"scenario,omitempty"`
	Period            string   `json:"period,omitempty"`
	PeriodStart       int      `json:"period_start,omitempty"`
	PeriodEnd         int      `json:"period_end,omitempty"`
	IndexCode         string   `json:"index_code,omitempty"`
}

// FeatureCollection is the flat feature list extracted from the upstream
// GeoJSON layer. Order is preserved from upstream.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Values returns the anomaly values in feature order, with missing entries
// represented as NaN so positional mapping to features survives filtering.
func (fc FeatureCollection) Values() []float64 {
	values := make([]float64, len(fc.Features))
	for i, f := range fc.Features {
		if f.Value == nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = *f.Value
	}
	return values
}

// RefreshEvent is a dataset-refresh notification published by the data
// platform when an (index, scenario, period) slice is recomputed. Empty key
// fields mean the whole catalog changed.
type RefreshEvent struct {
	IndexCode   string    `json:"index_code"`
	Scenario    string    `json:"scenario"`
	Period      string    `json:"period"`
	PublishedAt time.Time `json:"published_at"`
}

// Command mockapi serves a local stand-in for the upstream climate data API,
// for development and manual testing of the styling service without access
// to the real data platform. It generates deterministic municipality values
// per (index, scenario, period) selection and serves a small index catalog
// spanning both metadata schema generations.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :9000
//	DATA_API_BASE_URL=http://localhost:9000 go run ./cmd/styling
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"net/http"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
)

// catalog mixes current-schema and old-schema rows so the client's
// normalization path gets exercised during development.
var catalog = map[string]domain.RawIndexMetadata{
	"temp_anomaly": {
		Code:               "temp_anomaly",
		Name:               "Mean temperature anomaly",
		Unit:               "°C",
		PaletteFamily:      "RdBu_r",
		PaletteApplication: "diverging",
		AnomalyDirection:   "positive_warming",
	},
	"heat_days": {
		Code:               "heat_days",
		Name:               "Hot days per year",
		Unit:               "days",
		PaletteFamily:      "BuRd",
		PaletteApplication: "diverging",
		AnomalyDirection:   "positive_bad",
	},
	"frost_days": {
		Code:             "frost_days",
		Name:             "Frost days per year",
		Unit:             "days",
		ColorScheme:      "RdBu",
		ColorPaletteType: "diverging",
		RiskDirection:    "lower_worse",
	},
	"precip_anomaly": {
		Code:          "precip_anomaly",
		Name:          "Precipitation anomaly",
		Unit:          "%",
		ColorScheme:   "BuRd",
		RiskDirection: "neutral",
	},
}

// districts give the generated municipalities a stable two-level geography.
var districts = []struct {
	code, name string
}{
	{"DR01", "Noord"},
	{"DR02", "Oost"},
	{"DR03", "Zuid"},
	{"DR04", "West"},
}

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	municipalities := flag.Int("municipalities", 40, "municipalities per layer")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/indices/{code}", handleMetadata)
	mux.HandleFunc("GET /v1/indices/{code}/municipalities", handleMunicipalities(*municipalities))

	log.Printf("mock climate data API listening on %s (%d municipalities per layer)", *addr, *municipalities)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta, ok := catalog[r.PathValue("code")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, meta)
}

func handleMunicipalities(count int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := r.PathValue("code")
		scenario := r.URL.Query().Get("scenario")
		period := r.URL.Query().Get("period")
		if scenario == "" || period == "" {
			http.Error(w, "scenario and period are required", http.StatusBadRequest)
			return
		}

		writeJSON(w, generateLayer(index, scenario, period, count))
	}
}

// generateLayer builds a deterministic feature collection: the same selection
// always produces the same values, so cache behavior is observable by hand.
func generateLayer(index, scenario, period string, count int) domain.FeatureCollection {
	rng := rand.New(rand.NewSource(seed(index, scenario, period)))

	features := make([]domain.Feature, 0, count)
	for i := 0; i < count; i++ {
		d := districts[i%len(districts)]

		f := domain.Feature{
			ID:               fmt.Sprintf("feat-%03d", i+1),
			MunicipalityCode: fmt.Sprintf("GM%04d", i+1),
			MunicipalityName: fmt.Sprintf("Gemeente %03d", i+1),
			DistrictCode:     d.code,
			DistrictName:     d.name,
			AreaKm2:          20 + rng.Float64()*180,
			Scenario:         scenario,
			Period:           period,
			IndexCode:        index,
		}

		// Roughly one in ten municipalities has no model output.
		if rng.Intn(10) != 0 {
			v := rng.NormFloat64() * 3
			f.Value = &v
		}
		features = append(features, f)
	}
	return domain.FeatureCollection{Features: features}
}

func seed(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

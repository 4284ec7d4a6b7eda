package climateapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestClient_Municipalities_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/indices/heat_days/municipalities", r.URL.Path)
		assert.Equal(t, "rcp85", r.URL.Query().Get("scenario"))
		assert.Equal(t, "2050", r.URL.Query().Get("period"))

		fc := domain.FeatureCollection{Features: []domain.Feature{
			{ID: "f-1", MunicipalityCode: "GM0001", DistrictCode: "DR01", Value: floatPtr(3.5)},
			{ID: "f-2", MunicipalityCode: "GM0002", DistrictCode: "DR01", Value: nil},
		}}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(fc))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	fc, err := c.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	require.NoError(t, err)

	require.Len(t, fc.Features, 2)
	assert.Equal(t, "GM0001", fc.Features[0].MunicipalityCode)
	require.NotNil(t, fc.Features[0].Value)
	assert.Equal(t, 3.5, *fc.Features[0].Value)
	assert.Nil(t, fc.Features[1].Value)
}

func TestClient_Municipalities_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"upstream exploded"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Municipalities_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	require.Error(t, err)
}

func TestClient_IndexMetadata_CurrentSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/indices/heat_days", r.URL.Path)

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"code": "heat_days",
			"name": "Hot days per year",
			"unit": "days",
			"palette_family": "RdBu_r",
			"palette_application": "diverging",
			"anomaly_direction": "positive_bad"
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	meta, err := c.IndexMetadata(context.Background(), "heat_days")
	require.NoError(t, err)

	assert.Equal(t, "heat_days", meta.Code)
	assert.Equal(t, domain.PaletteRdBuReversed, meta.PaletteFamily)
	assert.Equal(t, "positive_bad", meta.Direction)
}

func TestClient_IndexMetadata_OldSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"code": "frost_days",
			"name": "Frost days per year",
			"unit": "days",
			"color_scheme": "RdBu",
			"color_palette_type": "diverging",
			"risk_direction": "lower_worse"
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	meta, err := c.IndexMetadata(context.Background(), "frost_days")
	require.NoError(t, err)

	assert.Equal(t, domain.PaletteRdBu, meta.PaletteFamily)
	assert.Equal(t, "lower_worse", meta.Direction)
}

func TestClient_IndexMetadata_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	meta, err := c.IndexMetadata(context.Background(), "no_such_index")
	require.NoError(t, err, "unknown codes degrade, they do not fail")
	assert.Empty(t, meta.Code)
}

func TestClient_IndexMetadata_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.IndexMetadata(context.Background(), "heat_days")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

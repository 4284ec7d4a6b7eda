// Package http exposes the styling API plus health, readiness, and metrics
// endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/styling"
)

// Styler computes styling results and label lookups.
type Styler interface {
	Style(ctx context.Context, index, scenario, period string) (*styling.Result, error)
	LabelsForIndex(ctx context.Context, code string) (domain.Labels, error)
}

// Exporter renders a styling result as a spreadsheet.
type Exporter interface {
	DistrictWorkbook(result *styling.Result) ([]byte, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the styling HTTP API.
type Server struct {
	httpServer *http.Server
	styler     Styler
	exporter   Exporter
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all API and operational routes.
func NewServer(addr string, styler Styler, exporter Exporter, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		styler:   styler,
		exporter: exporter,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/styling", s.handleStyling)
	mux.HandleFunc("GET /v1/districts", s.handleDistricts)
	mux.HandleFunc("GET /v1/districts/export", s.handleDistrictExport)
	mux.HandleFunc("GET /v1/indices/{code}/labels", s.handleIndexLabels)

	s.httpServer.Handler = s.withRequestID(mux)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withRequestID tags every request with an ID and logs its outcome.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// selection pulls the three required query parameters, writing a 400 and
// returning false when any is missing.
func selection(w http.ResponseWriter, r *http.Request) (index, scenario, period string, ok bool) {
	q := r.URL.Query()
	index, scenario, period = q.Get("index"), q.Get("scenario"), q.Get("period")
	if index == "" || scenario == "" || period == "" {
		writeError(w, http.StatusBadRequest, "index, scenario, and period query parameters are required")
		return "", "", "", false
	}
	return index, scenario, period, true
}

func (s *Server) handleStyling(w http.ResponseWriter, r *http.Request) {
	index, scenario, period, ok := selection(w, r)
	if !ok {
		return
	}

	result, err := s.styler.Style(r.Context(), index, scenario, period)
	if err != nil {
		s.logger.Error("styling request failed", "index", index, "error", err)
		writeError(w, http.StatusBadGateway, "styling computation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// districtsResponse lists district aggregates in stable code order.
type districtsResponse struct {
	IndexCode string                      `json:"index_code"`
	Scenario  string                      `json:"scenario"`
	Period    string                      `json:"period"`
	Districts []*domain.DistrictAggregate `json:"districts"`
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	index, scenario, period, ok := selection(w, r)
	if !ok {
		return
	}

	result, err := s.styler.Style(r.Context(), index, scenario, period)
	if err != nil {
		s.logger.Error("district request failed", "index", index, "error", err)
		writeError(w, http.StatusBadGateway, "styling computation failed")
		return
	}

	resp := districtsResponse{
		IndexCode: result.IndexCode,
		Scenario:  result.Scenario,
		Period:    result.Period,
		Districts: make([]*domain.DistrictAggregate, 0, len(result.Districts)),
	}
	for _, code := range domain.SortedDistrictCodes(result.Districts) {
		resp.Districts = append(resp.Districts, result.Districts[code])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDistrictExport(w http.ResponseWriter, r *http.Request) {
	index, scenario, period, ok := selection(w, r)
	if !ok {
		return
	}

	result, err := s.styler.Style(r.Context(), index, scenario, period)
	if err != nil {
		s.logger.Error("export request failed", "index", index, "error", err)
		writeError(w, http.StatusBadGateway, "styling computation failed")
		return
	}

	workbook, err := s.exporter.DistrictWorkbook(result)
	if err != nil {
		s.logger.Error("workbook generation failed", "index", index, "error", err)
		writeError(w, http.StatusInternalServerError, "export generation failed")
		return
	}

	filename := fmt.Sprintf("districts_%s_%s_%s.xlsx", index, scenario, period)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

// labelsResponse pairs an index code with its interpretation labels.
type labelsResponse struct {
	IndexCode string        `json:"index_code"`
	Labels    domain.Labels `json:"labels"`
}

func (s *Server) handleIndexLabels(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	labels, err := s.styler.LabelsForIndex(r.Context(), code)
	if err != nil {
		s.logger.Error("label request failed", "index", code, "error", err)
		writeError(w, http.StatusBadGateway, "label lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, labelsResponse{IndexCode: code, Labels: labels})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package styling orchestrates the fetch-normalize-style flow: it pulls
// municipality features and index metadata from the upstream data API, runs
// the domain engine, and returns the complete visual encoding the dashboard
// applies to its map layer.
package styling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

// DataProvider fetches municipality features and index metadata from the
// upstream climate data API. A metadata miss is reported as a zero-value
// IndexMetadata, not an error; errors are transport failures.
type DataProvider interface {
	Municipalities(ctx context.Context, index, scenario, period string) (domain.FeatureCollection, error)
	IndexMetadata(ctx context.Context, code string) (domain.IndexMetadata, error)
}

// Result is the complete visual encoding for one (index, scenario, period)
// selection. Colors are keyed by municipality code.
type Result struct {
	IndexCode string `json:"index_code"`
	IndexName string `json:"index_name,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Scenario  string `json:"scenario"`
	Period    string `json:"period"`

	Domain     [3]float64                           `json:"domain"`
	Colors     map[string]string                    `json:"colors"`
	Legend     []domain.LegendEntry                 `json:"legend"`
	Labels     domain.Labels                        `json:"labels"`
	Statistics domain.Statistics                    `json:"statistics"`
	Districts  map[string]*domain.DistrictAggregate `json:"districts"`
	ComputedAt time.Time                            `json:"computed_at"`
}

// Service computes styling results. It holds no per-request state beyond the
// singleflight group, so it is safe for concurrent use; two comparison
// panels asking for different scenarios run independently, while identical
// in-flight requests share one computation.
type Service struct {
	provider    DataProvider
	logger      *slog.Logger
	metrics     *observability.Metrics
	legendSteps int

	ready atomic.Bool
	group singleflight.Group
}

// New creates a styling Service. legendSteps below 2 falls back to the
// engine default.
func New(provider DataProvider, logger *slog.Logger, metrics *observability.Metrics, legendSteps int) *Service {
	if legendSteps < 2 {
		legendSteps = domain.DefaultLegendSteps
	}
	return &Service{
		provider:    provider,
		logger:      logger,
		metrics:     metrics,
		legendSteps: legendSteps,
	}
}

// CheckReadiness returns nil once the service has completed at least one
// styling computation.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no styling computation has completed yet")
	}
	return nil
}

// Style returns the visual encoding for one selection. Identical concurrent
// requests are deduplicated: late callers receive the result of the
// computation already in flight.
func (s *Service) Style(ctx context.Context, index, scenario, period string) (*Result, error) {
	if index == "" || scenario == "" || period == "" {
		return nil, errors.New("index, scenario, and period are required")
	}

	key := index + "|" + scenario + "|" + period
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.compute(ctx, index, scenario, period)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// LabelsForIndex returns the interpretation labels for one index code. An
// unknown code returns the generic label set.
func (s *Service) LabelsForIndex(ctx context.Context, code string) (domain.Labels, error) {
	if code == "" {
		return domain.Labels{}, errors.New("index code is required")
	}
	meta, err := s.provider.IndexMetadata(ctx, code)
	if err != nil {
		return domain.Labels{}, fmt.Errorf("fetch index metadata: %w", err)
	}
	return domain.InterpretationLabels(meta.Direction), nil
}

// compute fetches features and metadata in parallel and runs the engine.
func (s *Service) compute(ctx context.Context, index, scenario, period string) (*Result, error) {
	start := time.Now()

	var (
		fc   domain.FeatureCollection
		meta domain.IndexMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fc, err = s.provider.Municipalities(gctx, index, scenario, period)
		if err != nil {
			return fmt.Errorf("fetch municipalities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		meta, err = s.provider.IndexMetadata(gctx, index)
		if err != nil {
			return fmt.Errorf("fetch index metadata: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.ComputeErrors.Inc()
		s.logger.Error("styling computation failed",
			"index", index, "scenario", scenario, "period", period, "error", err)
		return nil, err
	}

	// A catalog miss degrades to the engine's constant fallback scale
	// rather than failing the whole request.
	var metaRef *domain.IndexMetadata
	if meta.Code != "" {
		metaRef = &meta
	} else {
		s.logger.Warn("index metadata missing, using fallback scale", "index", index)
	}

	values := fc.Values()
	scale := domain.BuildColorScale(metaRef, values)
	min, mid, max := scale.Domain()

	colors := make(map[string]string, len(fc.Features))
	for _, f := range fc.Features {
		code := f.MunicipalityCode
		if code == "" {
			code = f.ID
		}
		colors[code] = scale.ResolvePointer(f.Value)
	}

	result := &Result{
		IndexCode:  index,
		IndexName:  meta.Name,
		Unit:       meta.Unit,
		Scenario:   scenario,
		Period:     period,
		Domain:     [3]float64{min, mid, max},
		Colors:     colors,
		Legend:     domain.GenerateLegendItems(scale, s.legendSteps),
		Labels:     domain.InterpretationLabels(meta.Direction),
		Statistics: domain.CalculateStatistics(values),
		Districts:  domain.AggregateByDistrict(fc),
		ComputedAt: domain.Now(),
	}

	s.metrics.StylingComputations.Inc()
	s.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	s.ready.Store(true)

	s.logger.Debug("styling computed",
		"index", index, "scenario", scenario, "period", period,
		"features", len(fc.Features), "districts", len(result.Districts))
	return result, nil
}

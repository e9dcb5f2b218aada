// internal/service/render/service.go

package render

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"regiodash/internal/adapter/cache"
	"regiodash/internal/domain/selection"
	"regiodash/internal/observability"
)

// View names used in cache keys and metrics
const (
	ViewMap        = "map"
	ViewTimeSeries = "timeseries"
	ViewPNG        = "png"
)

// Service renders views as encoded responses, going through the render
// cache first.
type Service struct {
	renderer *Renderer
	cache    cache.Cache
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a new render service
func NewService(renderer *Renderer, c cache.Cache, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		renderer: renderer,
		cache:    c,
		metrics:  metrics,
		logger:   logger,
	}
}

// MapJSON returns the encoded map view of state
func (s *Service) MapJSON(ctx context.Context, state selection.State) ([]byte, error) {
	key := cache.Key(ViewMap, state.Year, state.Variable, state.Selected)
	return s.cached(ctx, ViewMap, key, func() ([]byte, error) {
		mv, err := s.renderer.Map(state)
		if err != nil {
			return nil, err
		}
		return json.Marshal(mv)
	})
}

// TimeSeriesJSON returns the encoded time-series view of state. Traces
// follow selection order, so the cache key keeps it.
func (s *Service) TimeSeriesJSON(ctx context.Context, state selection.State, variable string) ([]byte, error) {
	if variable == "" {
		variable = state.Variable
	}
	key := orderedKey(ViewTimeSeries, state, variable)
	return s.cached(ctx, ViewTimeSeries, key, func() ([]byte, error) {
		tv, err := s.renderer.TimeSeries(state, variable)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tv)
	})
}

// TimeSeriesPNG returns the time-series view of state as a PNG image
func (s *Service) TimeSeriesPNG(ctx context.Context, state selection.State, variable string) ([]byte, error) {
	if variable == "" {
		variable = state.Variable
	}
	key := orderedKey(ViewPNG, state, variable)
	return s.cached(ctx, ViewPNG, key, func() ([]byte, error) {
		tv, err := s.renderer.TimeSeries(state, variable)
		if err != nil {
			return nil, err
		}
		return PNG(tv, PNGWidth, PNGHeight)
	})
}

func orderedKey(view string, state selection.State, variable string) string {
	// one joined id keeps Key from sorting the selection
	return cache.Key(view, state.Year, variable, []string{strings.Join(state.Selected, ">")})
}

func (s *Service) cached(ctx context.Context, view, key string, render func() ([]byte, error)) ([]byte, error) {
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("render cache read failed", "view", view, "error", err)
	} else if ok {
		s.metrics.RenderCache.WithLabelValues("hit").Inc()
		return b, nil
	}
	s.metrics.RenderCache.WithLabelValues("miss").Inc()

	start := time.Now()
	b, err := render()
	if err != nil {
		return nil, err
	}
	s.metrics.Renders.WithLabelValues(view).Inc()
	s.metrics.RenderDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())

	if err := s.cache.Set(ctx, key, b); err != nil {
		s.logger.Warn("render cache write failed", "view", view, "error", err)
	}
	return b, nil
}

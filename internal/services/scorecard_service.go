package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/infrastructure"
	"scorecard/internal/scorecard"
	"scorecard/internal/watcher"
)

// RefreshComponents are the dashboard parts a refresh invalidates.
var RefreshComponents = []string{"kpis", "charts", "table"}

// Notifier is told when dashboards should reload.
type Notifier interface {
	BroadcastRefresh(source string, components []string)
}

// ScorecardService loads the scorecard and serves views of it.
type ScorecardService struct {
	path     string
	loader   *scorecard.Loader
	cache    *scorecard.Cache
	group    singleflight.Group
	metrics  *infrastructure.ScorecardMetrics
	tracer   trace.Tracer
	notifier Notifier
	logger   *slog.Logger
}

// ScorecardOption configures a ScorecardService.
type ScorecardOption func(*ScorecardService)

// WithCache enables the bundle cache.
func WithCache(cache *scorecard.Cache) ScorecardOption {
	return func(s *ScorecardService) { s.cache = cache }
}

// WithMetrics records load and cache instruments.
func WithMetrics(metrics *infrastructure.ScorecardMetrics) ScorecardOption {
	return func(s *ScorecardService) { s.metrics = metrics }
}

// WithTracer wraps loads in spans.
func WithTracer(tracer trace.Tracer) ScorecardOption {
	return func(s *ScorecardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithNotifier receives refresh broadcasts after invalidation.
func WithNotifier(n Notifier) ScorecardOption {
	return func(s *ScorecardService) { s.notifier = n }
}

// NewScorecardService creates a service for the input at path.
func NewScorecardService(path string, loader *scorecard.Loader, logger *slog.Logger, opts ...ScorecardOption) *ScorecardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	s := &ScorecardService{
		path:   path,
		loader: loader,
		tracer: noop.NewTracerProvider().Tracer("scorecard"),
		logger: logger.With(slog.String("component", "scorecard_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InputPath is the file the service reads.
func (s *ScorecardService) InputPath() string {
	return s.path
}

// Bundle returns the bundle for the current file content. Unchanged content
// is served from the cache; concurrent loads of the same content share one
// parse.
func (s *ScorecardService) Bundle(ctx context.Context) (*scorecard.Bundle, error) {
	ctx, span := s.tracer.Start(ctx, "scorecard.load",
		trace.WithAttributes(attribute.String("scorecard.path", s.path)))
	defer span.End()

	start := time.Now()
	bundle, cached, err := s.load(ctx)
	if !cached {
		s.metrics.RecordLoad(ctx, time.Since(start), err)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("scorecard.cache_hit", cached),
		attribute.String("scorecard.digest", bundle.Source.Digest),
		attribute.Int("scorecard.warnings", len(bundle.Warnings)),
	)
	return bundle, nil
}

func (s *ScorecardService) load(ctx context.Context) (*scorecard.Bundle, bool, error) {
	in, err := scorecard.ReadInput(s.path)
	if err != nil {
		return nil, false, err
	}

	key := scorecard.CacheKey{Path: s.path, Digest: in.Digest}
	if s.cache != nil {
		if b, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheLookup(ctx, true)
			return b, true, nil
		}
		s.metrics.RecordCacheLookup(ctx, false)
	}

	// Coalesced waiters must not inherit the first caller's cancellation.
	parseCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(in.Digest, func() (interface{}, error) {
		b, err := s.loader.Parse(parseCtx, in)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(key, b)
		}
		for _, w := range b.Warnings {
			s.metrics.RecordFallback(parseCtx, w.Code)
		}
		return b, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		s.logger.DebugContext(ctx, "load shared with concurrent caller", slog.String("digest", in.Digest))
	}
	return v.(*scorecard.Bundle), false, nil
}

// View loads the bundle and applies f.
func (s *ScorecardService) View(ctx context.Context, f scorecard.Filter) (*scorecard.View, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return scorecard.NewView(b, f), nil
}

// Invalidate drops cached bundles for the input and tells dashboards to
// reload. It returns how many entries were dropped.
func (s *ScorecardService) Invalidate(ctx context.Context, reason string) int {
	n := 0
	if s.cache != nil {
		n = s.cache.Invalidate(s.path)
	}
	s.logger.InfoContext(ctx, "scorecard cache invalidated",
		slog.String("reason", reason),
		slog.Int("entries", n))
	if s.notifier != nil {
		s.notifier.BroadcastRefresh(reason, RefreshComponents)
	}
	return n
}

// CacheStats reports cache counters; ok is false when caching is disabled.
func (s *ScorecardService) CacheStats() (stats scorecard.CacheStats, ok bool) {
	if s.cache == nil {
		return scorecard.CacheStats{}, false
	}
	return s.cache.Stats(), true
}

// Watch invalidates on every change event until events closes or ctx is
// done.
func (s *ScorecardService) Watch(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Invalidate(ctx, "watcher:"+string(ev.Op))
		}
	}
}

// ParseFilter validates raw filter input from a query string or flags.
// Theme names are kept as given; unknown themes simply match nothing.
func ParseFilter(themes []string, status string) (scorecard.Filter, error) {
	st, err := scorecard.ParseStatus(status)
	if err != nil {
		return scorecard.Filter{}, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("unknown status %q", status), ErrInvalidFilter).
			WithContext("field", "status")
	}

	cleaned := make([]string, 0, len(themes))
	for _, t := range themes {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		cleaned = nil
	}
	return scorecard.Filter{Themes: cleaned, Status: st}, nil
}

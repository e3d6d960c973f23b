package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/infrastructure"
	"scorecard/internal/scorecard"
	"scorecard/internal/shared/testutil"
	"scorecard/internal/watcher"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastRefresh(source string, components []string) {
	m.Called(source, components)
}

type fixture struct {
	svc      *ScorecardService
	path     string
	reader   *sdkmetric.ManualReader
	spans    *tracetest.SpanRecorder
	notifier *mockNotifier
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateScorecardMetrics(mp.Meter("test"))
	require.NoError(t, err)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	notifier := &mockNotifier{}
	path := testutil.WriteScorecardFile(t, t.TempDir(), testutil.SampleScorecardCSV)
	loader := scorecard.NewLoader(scorecard.DefaultReadOptions(), scorecard.DefaultRules(), logger)

	opts := []ScorecardOption{
		WithMetrics(metrics),
		WithTracer(tp.Tracer("test")),
		WithNotifier(notifier),
	}
	if withCache {
		opts = append(opts, WithCache(scorecard.NewCache(0, 4)))
	}

	return &fixture{
		svc:      NewScorecardService(path, loader, logger, opts...),
		path:     path,
		reader:   reader,
		spans:    spans,
		notifier: notifier,
	}
}

// counter sums every data point of the named Int64 counter.
func (f *fixture) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestScorecardService_BundleCachesByDigest(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	first, err := f.svc.Bundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 35, first.FinalScore)
	assert.Equal(t, "Grau 2", first.Classification)
	assert.Equal(t, f.path, first.Source.Path)

	second, err := f.svc.Bundle(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Equal(t, int64(1), f.counter(t, "scorecard_cache_hits_total"))
	assert.Equal(t, int64(1), f.counter(t, "scorecard_cache_misses_total"))
	assert.Equal(t, int64(1), f.counter(t, "scorecard_loads_total"))
	assert.Equal(t, int64(1), f.counter(t, "scorecard_fallback_warnings_total"))

	stats, ok := f.svc.CacheStats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.Entries)
}

func TestScorecardService_EditedFileIsReparsed(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	first, err := f.svc.Bundle(ctx)
	require.NoError(t, err)

	edited := strings.Replace(testutil.SampleScorecardCSV, "Pontuação Geral Final;35", "Pontuação Geral Final;50", 1)
	testutil.WriteScorecardFile(t, filepath.Dir(f.path), edited)

	second, err := f.svc.Bundle(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 50, second.FinalScore)
	assert.Equal(t, "Grau 3", second.Classification)
	assert.NotEqual(t, first.Source.Digest, second.Source.Digest)

	stats, _ := f.svc.CacheStats()
	assert.Equal(t, 1, stats.Entries, "older digest of the same path is replaced")
}

func TestScorecardService_MissingInput(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, os.Remove(f.path))

	_, err := f.svc.Bundle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, scorecard.ErrInputNotFound)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, int64(1), f.counter(t, "scorecard_loads_total"))

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "scorecard.load", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestScorecardService_WithoutCache(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Bundle(ctx)
	require.NoError(t, err)
	_, err = f.svc.Bundle(ctx)
	require.NoError(t, err)

	_, ok := f.svc.CacheStats()
	assert.False(t, ok)
	assert.Equal(t, int64(2), f.counter(t, "scorecard_loads_total"))
	assert.Equal(t, int64(0), f.counter(t, "scorecard_cache_misses_total"))

	f.notifier.On("BroadcastRefresh", "manual", RefreshComponents).Once()
	assert.Equal(t, 0, f.svc.Invalidate(ctx, "manual"))
	f.notifier.AssertExpectations(t)
}

func TestScorecardService_ConcurrentLoads(t *testing.T) {
	f := newFixture(t, true)

	var mu sync.Mutex
	scores := make([]int, 0, 16)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			b, err := f.svc.Bundle(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			scores = append(scores, b.FinalScore)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, scores, 16)
	for _, s := range scores {
		assert.Equal(t, 35, s)
	}
}

func TestScorecardService_CancelledCallerStillLoads(t *testing.T) {
	f := newFixture(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := f.svc.Bundle(ctx)
	require.NoError(t, err, "a shared parse must not fail because one caller went away")
	assert.Equal(t, 35, b.FinalScore)

	again, err := f.svc.Bundle(context.Background())
	require.NoError(t, err)
	assert.Same(t, b, again)
}

func TestScorecardService_View(t *testing.T) {
	f := newFixture(t, true)

	view, err := f.svc.View(context.Background(), scorecard.Filter{Status: scorecard.StatusPresent})
	require.NoError(t, err)
	assert.Len(t, view.Requirements, 3)
	assert.Equal(t, 5, view.Bundle.TotalRequirements, "KPIs ignore the filter")
	assert.Len(t, view.ThemeOptions, 3)
}

func TestScorecardService_InvalidateAndWatch(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Bundle(ctx)
	require.NoError(t, err)

	f.notifier.On("BroadcastRefresh", "watcher:modify", RefreshComponents).Once()

	events := make(chan watcher.Event, 1)
	events <- watcher.Event{Path: f.path, Op: watcher.OpModify}
	close(events)
	f.svc.Watch(ctx, events)

	f.notifier.AssertExpectations(t)
	stats, _ := f.svc.CacheStats()
	assert.Equal(t, 0, stats.Entries)
}

func TestScorecardService_WatchStopsOnCancel(t *testing.T) {
	f := newFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		f.svc.Watch(ctx, make(chan watcher.Event))
		close(done)
	}()
	<-done
	f.notifier.AssertNotCalled(t, "BroadcastRefresh", mock.Anything, mock.Anything)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		themes  []string
		status  string
		want    scorecard.Filter
		wantErr bool
	}{
		{
			name: "empty selects everything",
			want: scorecard.Filter{Status: scorecard.StatusAll},
		},
		{
			name:   "blank themes are dropped",
			themes: []string{" ", "Tema A ", ""},
			status: "Apenas Ausentes",
			want:   scorecard.Filter{Themes: []string{"Tema A"}, Status: scorecard.StatusAbsent},
		},
		{
			name:   "status code",
			status: "present",
			want:   scorecard.Filter{Status: scorecard.StatusPresent},
		},
		{
			name:    "unknown status",
			status:  "maybe",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.themes, tt.status)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFilter)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

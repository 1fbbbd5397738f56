package sdkmetric

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/instrumentation"
)

// meterSharedState is the state every Meter created by one MeterProvider
// shares (spec.md §4.3, component C4): the reader list, the view registry
// resolving instrument streams, and the collectLock serializing callback
// invocation so two readers collecting concurrently never race inside a
// single callback.
type meterSharedState struct {
	readers      []Reader
	viewRegistry *ViewRegistry
	logger       *zap.Logger

	mu     sync.Mutex
	meters map[instrumentation.Scope]*Meter

	collectMu sync.Mutex
}

func newMeterSharedState(readers []Reader, viewRegistry *ViewRegistry, logger *zap.Logger) *meterSharedState {
	return &meterSharedState{
		readers:      readers,
		viewRegistry: viewRegistry,
		logger:       logger,
		meters:       make(map[instrumentation.Scope]*Meter),
	}
}

func (s *meterSharedState) meter(scope instrumentation.Scope) *Meter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.meters[scope]; ok {
		return m
	}
	m := newMeter(scope, s)
	s.meters[scope] = m
	return m
}

// collectAll runs every meter's callbacks exactly once (under collectLock,
// so two readers collecting at once still serialize callback execution
// per spec.md §4.3) and gathers the resulting MetricData for readerIndex
// into ScopeMetrics, one per Meter with at least one non-empty stream.
func (s *meterSharedState) collectAll(ctx context.Context, readerIndex int, start, end time.Time) ([]ScopeMetrics, error) {
	s.collectMu.Lock()
	defer s.collectMu.Unlock()

	s.mu.Lock()
	meters := make([]*Meter, 0, len(s.meters))
	for _, m := range s.meters {
		meters = append(meters, m)
	}
	s.mu.Unlock()

	var errs error
	var out []ScopeMetrics
	for _, m := range meters {
		if cbErr := m.runCallbacks(ctx); cbErr != nil {
			errs = multierr.Append(errs, cbErr)
		}
		var metrics []MetricData
		for _, rs := range m.storages {
			if rs.readerIndex != readerIndex {
				continue
			}
			data, ok := rs.storage.collect(start, end)
			if ok {
				metrics = append(metrics, data)
			}
		}
		if len(metrics) > 0 {
			out = append(out, ScopeMetrics{Scope: m.scope, Metrics: metrics})
		}
	}
	return out, errs
}

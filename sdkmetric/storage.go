package sdkmetric

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// metricStorage is the per-stream (instrument x view) home for recorded
// measurements (spec.md §4.2/§4.3, component C4): synchronous storage
// records inline and collects by snapshotting; asynchronous storage only
// writes during a callback invoked at collection time (see
// storage_async.go).
type metricStorage interface {
	collect(start, end time.Time) (MetricData, bool)
}

// newAggregatorHandle builds one Handle for the resolved Aggregation,
// shared by both the sync and async storage constructors.
func newAggregatorHandle[N aggregate.Number](agg Aggregation, monotonic bool) aggregate.Handle[N] {
	switch agg.Kind {
	case AggregationSum:
		return aggregate.NewSum[N](monotonic, aggregate.FilterAlwaysOff, nil).NewHandle()
	case AggregationLastValue:
		return aggregate.NewLastValue[N](aggregate.FilterAlwaysOff, nil).NewHandle()
	case AggregationExplicitBucketHistogram:
		return aggregate.NewHistogram[N](boundariesOrDefault(agg), !agg.NoMinMax, aggregate.FilterAlwaysOff, nil).NewHandle()
	default:
		return aggregate.NewDrop[N]().NewHandle()
	}
}

// handlePool is a free-list of retired AggregatorHandles (a DELTA collect
// returns every collected handle here), reused for the next attribute set
// that needs a handle, so cardinality churn doesn't force unbounded allocation
// (spec.md §4.2 "handle pooling").
type handlePool[N aggregate.Number] struct {
	mu    sync.Mutex
	free  []aggregate.Handle[N]
	build func() aggregate.Handle[N]
}

func newHandlePool[N aggregate.Number](build func() aggregate.Handle[N]) *handlePool[N] {
	return &handlePool[N]{build: build}
}

func (p *handlePool[N]) get() aggregate.Handle[N] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		return h
	}
	return p.build()
}

func (p *handlePool[N]) put(h aggregate.Handle[N]) {
	p.mu.Lock()
	p.free = append(p.free, h)
	p.mu.Unlock()
}

// attributesEntry pairs the recorded Set with its Handle so collection can
// emit both the reduced attribute set and its aggregation.
type attributesEntry[N aggregate.Number] struct {
	set    attribute.Set
	handle aggregate.Handle[N]
}

func warnOverflow(logger *zap.Logger, name string) {
	if logger == nil {
		return
	}
	logger.Warn("metric stream exceeded its cardinality limit, folding into overflow series",
		zap.String("instrument", name))
}

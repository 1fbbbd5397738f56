package sdkmetric

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// syncStorage is DefaultSynchronousMetricStorage (spec.md §4.2, component
// C4): one map from attribute.Set to AggregatorHandle per resolved stream,
// bounded to cardinalityCap series in total: cardinalityCap-1 distinct sets
// plus a single overflow series that every later set is folded into
// (spec.md's overflow rule). In
// DELTA mode, collected handles are returned to a free-list pool instead
// of being discarded, trimming allocation churn from attribute-set
// turnover across collection cycles.
type syncStorage[N aggregate.Number] struct {
	mu             sync.Mutex
	stream         resolvedStream
	monotonic      bool
	temporality    AggregationTemporality
	values         map[attribute.Distinct]*attributesEntry[N]
	pool           *handlePool[N]
	overflowHandle aggregate.Handle[N]
	overflowInUse  bool
	start          time.Time
	lastCollect    time.Time
	logger         *zap.Logger
	warnedOverflow bool
}

func newSyncStorage[N aggregate.Number](stream resolvedStream, monotonic bool, temporality AggregationTemporality, logger *zap.Logger) *syncStorage[N] {
	now := time.Now()
	build := func() aggregate.Handle[N] { return newAggregatorHandle[N](stream.aggregation, monotonic) }
	return &syncStorage[N]{
		stream:         stream,
		monotonic:      monotonic,
		temporality:    temporality,
		values:         make(map[attribute.Distinct]*attributesEntry[N]),
		pool:           newHandlePool[N](build),
		overflowHandle: build(),
		start:          now,
		lastCollect:    now,
		logger:         logger,
	}
}

func (s *syncStorage[N]) cardinalityCap() int {
	if s.stream.cardinalityCap > 0 {
		return s.stream.cardinalityCap
	}
	return defaultCardinalityLimit
}

// Record applies the view's AttributesProcessor (if any), resolves the
// bounded-cardinality handle for the resulting attribute set, and records
// value against it.
func (s *syncStorage[N]) Record(ctx aggregate.MeasureContext, value N, attrs attribute.Set) {
	if s.monotonic && value < 0 {
		return
	}
	if s.stream.attributesProc != nil {
		attrs = s.stream.attributesProc(attrs)
	}
	s.mu.Lock()
	h := s.handleLocked(attrs)
	s.mu.Unlock()
	h.Record(ctx, value)
}

// handleLocked must be called with mu held. It returns the overflow
// handle's once the stream has reached its cardinality cap and attrs is a
// set never seen before this collection window.
func (s *syncStorage[N]) handleLocked(attrs attribute.Set) aggregate.Handle[N] {
	key := attrs.Equivalent()
	if e, ok := s.values[key]; ok {
		return e.handle
	}
	if len(s.values) >= s.cardinalityCap()-1 {
		s.overflowInUse = true
		if !s.warnedOverflow {
			warnOverflow(s.logger, s.stream.descriptor.Name)
			s.warnedOverflow = true
		}
		return s.overflowHandle
	}
	h := s.pool.get()
	s.values[key] = &attributesEntry[N]{set: attrs, handle: h}
	return h
}

func (s *syncStorage[N]) collect(start, end time.Time) (MetricData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reset := s.temporality == DeltaTemporality
	pointStart := s.start
	if reset {
		pointStart = s.lastCollect
	}

	data := MetricData{
		Name:        s.stream.descriptor.Name,
		Description: s.stream.descriptor.Description,
		Unit:        s.stream.descriptor.Unit,
		Kind:        s.stream.descriptor.Kind,
		Aggregation: s.stream.aggregation.Kind,
		Temporality: s.temporality,
		Monotonic:   s.monotonic,
	}

	for key, e := range s.values {
		p, ok := e.handle.Aggregate(pointStart, end, e.set, reset)
		if ok {
			data.Points = append(data.Points, toMetricPoint[N](p))
		}
		if reset {
			s.pool.put(e.handle)
			delete(s.values, key)
		}
	}
	if s.overflowInUse {
		p, ok := s.overflowHandle.Aggregate(pointStart, end, overflowAttributeSet, reset)
		if ok {
			data.Points = append(data.Points, toMetricPoint[N](p))
		}
		if reset {
			s.overflowInUse = false
		}
	}
	s.lastCollect = end
	return data, len(data.Points) > 0
}

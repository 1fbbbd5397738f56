package sdkmetric

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// asyncStorage is AsynchronousMetricStorage (spec.md §4.3, component C4):
// between collections it keeps one entry per attribute set seen, and for
// observable counters/up-down-counters the previous cumulative reading
// needed to derive DELTA. Values are written only while a callback runs
// during collect, never concurrently with collection itself
// (meterSharedState serializes all callbacks for one collect under its
// collectMu lock, spec.md §4.3 "collectLock").
type asyncStorage[N aggregate.Number] struct {
	mu             sync.Mutex
	stream         resolvedStream
	temporality    AggregationTemporality
	values         map[attribute.Distinct]*asyncEntry[N]
	overflowSum    *aggregate.PrecomputedSum[N]
	overflowGauge  N
	overflowIsSet  bool
	overflowInUse  bool
	start          time.Time
	lastCollect    time.Time
	logger         *zap.Logger
	warnedOverflow bool
}

type asyncEntry[N aggregate.Number] struct {
	set  attribute.Set
	sum  *aggregate.PrecomputedSum[N]
	last N
	isSet bool
}

func newAsyncStorage[N aggregate.Number](stream resolvedStream, temporality AggregationTemporality, logger *zap.Logger) *asyncStorage[N] {
	now := time.Now()
	return &asyncStorage[N]{
		stream:      stream,
		temporality: temporality,
		values:      make(map[attribute.Distinct]*asyncEntry[N]),
		overflowSum: aggregate.NewPrecomputedSum[N](),
		start:       now,
		lastCollect: now,
		logger:      logger,
	}
}

func (s *asyncStorage[N]) cardinalityCap() int {
	if s.stream.cardinalityCap > 0 {
		return s.stream.cardinalityCap
	}
	return defaultCardinalityLimit
}

// Observe records one callback-reported reading for attrs, called only
// from within a Meter callback invocation.
func (s *asyncStorage[N]) Observe(value N, attrs attribute.Set) {
	if s.stream.attributesProc != nil {
		attrs = s.stream.attributesProc(attrs)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attrs.Equivalent()
	e, ok := s.values[key]
	if !ok {
		if len(s.values) >= s.cardinalityCap()-1 {
			s.overflowInUse = true
			if !s.warnedOverflow {
				warnOverflow(s.logger, s.stream.descriptor.Name)
				s.warnedOverflow = true
			}
			if s.stream.aggregation.Kind == AggregationLastValue {
				s.overflowGauge = value
				s.overflowIsSet = true
			} else {
				s.overflowSum.Observe(value)
			}
			return
		}
		e = &asyncEntry[N]{set: attrs, sum: aggregate.NewPrecomputedSum[N]()}
		s.values[key] = e
	}
	if s.stream.aggregation.Kind == AggregationLastValue {
		e.last = value
		e.isSet = true
		return
	}
	e.sum.Observe(value)
}

func (s *asyncStorage[N]) collect(start, end time.Time) (MetricData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pointStart := s.start
	if s.temporality == DeltaTemporality {
		pointStart = s.lastCollect
	}

	data := MetricData{
		Name:        s.stream.descriptor.Name,
		Description: s.stream.descriptor.Description,
		Unit:        s.stream.descriptor.Unit,
		Kind:        s.stream.descriptor.Kind,
		Aggregation: s.stream.aggregation.Kind,
		Temporality: s.temporality,
	}

	isGauge := s.stream.aggregation.Kind == AggregationLastValue
	for _, e := range s.values {
		if isGauge {
			if !e.isSet {
				continue
			}
			data.Points = append(data.Points, MetricPoint{
				Attributes: e.set, StartTime: pointStart, Time: end,
				GaugeInt64: asInt64(e.last), GaugeFloat64: asFloat64(e.last),
			})
			e.isSet = false
			continue
		}
		p, ok := e.sum.Aggregate(pointStart, end, e.set, toSumTemporality(s.temporality))
		if ok {
			data.Points = append(data.Points, toMetricPoint[N](p))
		}
	}
	if s.overflowInUse {
		if isGauge {
			if s.overflowIsSet {
				data.Points = append(data.Points, MetricPoint{
					Attributes: overflowAttributeSet, StartTime: pointStart, Time: end,
					GaugeInt64: asInt64(s.overflowGauge), GaugeFloat64: asFloat64(s.overflowGauge),
				})
				s.overflowIsSet = false
			}
		} else {
			p, ok := s.overflowSum.Aggregate(pointStart, end, overflowAttributeSet, toSumTemporality(s.temporality))
			if ok {
				data.Points = append(data.Points, toMetricPoint[N](p))
			}
		}
	}
	// values map is never cleared: observable instruments keep reporting
	// their last-known set every cycle until the callback stops observing
	// it, matching spec.md §4.3's "sticky until absent" async semantics.
	s.lastCollect = end
	return data, len(data.Points) > 0
}

func toSumTemporality(t AggregationTemporality) aggregate.Temporality {
	if t == DeltaTemporality {
		return aggregate.Delta
	}
	return aggregate.Cumulative
}

func asInt64[N aggregate.Number](v N) int64 {
	if i, ok := any(v).(int64); ok {
		return i
	}
	return 0
}

func asFloat64[N aggregate.Number](v N) float64 {
	if f, ok := any(v).(float64); ok {
		return f
	}
	return 0
}

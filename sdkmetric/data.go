package sdkmetric

import (
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	"github.com/open-telemetry/sdk-core/resource"
)

// AggregationTemporality selects whether a reader wants points reported as
// DELTA (reset each collection) or CUMULATIVE (since process start), per
// spec.md §3/§4.3.
type AggregationTemporality int

const (
	CumulativeTemporality AggregationTemporality = iota
	DeltaTemporality
)

// NumberKind tags which of MetricPoint's typed fields is populated,
// mirroring InstrumentValueType (spec.md §3).
type NumberKind int

const (
	Int64Kind NumberKind = iota
	Float64Kind
)

// Exemplar is a sampled raw measurement attached to a MetricPoint
// (spec.md §4.2).
type Exemplar struct {
	Time         time.Time
	Int64Value   int64
	Float64Value float64
	Attributes   []attribute.KeyValue
	HasSpan      bool
	SpanID       [8]byte
	TraceID      [16]byte
}

// Histogram is the explicit-bucket histogram payload of a point.
type Histogram struct {
	Boundaries []float64
	Counts     []uint64
	Count      uint64
	SumInt64   int64
	SumFloat64 float64
	HasMinMax  bool
	MinInt64, MaxInt64     int64
	MinFloat64, MaxFloat64 float64
}

// MetricPoint is one attribute-set's data point within a MetricData
// collection (spec.md §3): exactly one of Sum/Gauge/Histogram is
// meaningful, selected by the owning MetricData's Aggregation.
type MetricPoint struct {
	Attributes attribute.Set
	StartTime  time.Time
	Time       time.Time

	SumInt64     int64
	SumFloat64   float64
	GaugeInt64   int64
	GaugeFloat64 float64
	Histogram    Histogram

	Exemplars []Exemplar
}

// MetricData is all points collected for one instrument during one
// collection cycle (spec.md §3).
type MetricData struct {
	Name        string
	Description string
	Unit        string
	Kind        InstrumentKind
	ValueKind   NumberKind
	Aggregation AggregationKind
	Temporality AggregationTemporality
	Monotonic   bool
	Points      []MetricPoint
}

// ScopeMetrics groups the MetricData produced by instruments registered
// against one Meter (instrumentation Scope), spec.md §3's ScopeMetrics.
type ScopeMetrics struct {
	Scope   instrumentation.Scope
	Metrics []MetricData
}

// ResourceMetrics is the root of one PeriodicMetricReader export payload
// (spec.md §3).
type ResourceMetrics struct {
	Resource resource.Resource
	ScopeMetrics []ScopeMetrics
}

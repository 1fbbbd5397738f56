// Package aggregate implements the AggregatorHandle family of spec.md §3/§4.2
// (component C3): Sum, LastValue, ExplicitBucketHistogram and Drop. Each
// aggregator is generic over its numeric type, the idiomatic Go expression
// of the "Long/Double" duplication the spec's InstrumentValueType enum
// implies (DESIGN.md: stdlib generics, no pack library models this, it is
// pure domain arithmetic).
package aggregate

import (
	"math"
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// Number is the constraint satisfied by both of spec.md's
// InstrumentValueType cases.
type Number interface {
	~int64 | ~float64
}

// Temporality mirrors spec.md §3's AggregationTemporality.
type Temporality int

const (
	Cumulative Temporality = iota
	Delta
)

// Point is the per-attribute-set output of a single collection, spec.md's
// MetricPoint with the specific payload stored in one of the typed fields
// below (only one is populated, depending on which aggregator produced it).
type Point[N Number] struct {
	StartTime  time.Time
	Time       time.Time
	Attributes attribute.Set
	Exemplars  []Exemplar[N]

	HasSum   bool
	Sum      N
	HasGauge bool
	Gauge    N

	HasHistogram bool
	Histogram    HistogramValue[N]
}

// HistogramValue is the ExplicitBucketHistogram payload.
type HistogramValue[N Number] struct {
	Boundaries   []float64
	BucketCounts []uint64
	Count        uint64
	Sum          N
	Min, Max     N
	HasMinMax    bool
}

// Exemplar is a sampled raw measurement attached to a point (spec.md §3,
// §4.2 "Exemplars").
type Exemplar[N Number] struct {
	Value      N
	Time       time.Time
	Attributes []attribute.KeyValue
	SpanID     [8]byte
	TraceID    [16]byte
	HasSpan    bool
}

// Handle is the per-attribute-set AggregatorHandle contract of spec.md §3:
// recordLong/recordDouble must be thread-safe, and
// aggregateThenMaybeReset atomically snapshots and optionally resets.
// Sum, Histogram, LastValue and Drop all satisfy this; the reported bool
// is false when there is no point to report: always for Drop, and for
// LastValue when nothing has been recorded since creation or the last
// reset. Sum and Histogram always report a point.
type Handle[N Number] interface {
	Record(ctx MeasureContext, value N)
	Aggregate(start, end time.Time, attrs attribute.Set, reset bool) (Point[N], bool)
}

// MeasureContext carries the ambient info an ExemplarReservoir needs
// (span/trace id for the trace_based filter) without this package
// depending on context.Context or the trace package directly, keeping
// aggregate import-free of anything but attribute and stdlib.
type MeasureContext struct {
	sampledSpan bool
	spanID      [8]byte
	traceID     [16]byte
}

// NewMeasureContext builds the ambient info passed to Record.
func NewMeasureContext(sampledSpan bool, spanID [8]byte, traceID [16]byte) MeasureContext {
	return MeasureContext{sampledSpan: sampledSpan, spanID: spanID, traceID: traceID}
}

func isNaN[N Number](v N) bool {
	f := float64(v)
	return math.IsNaN(f)
}

var _ = sync.Mutex{} // aggregator implementations below use sync.Mutex directly

package sdkmetric

import "context"

// Reader is the pull side of the metrics pipeline (spec.md §3/§4.3): a
// MeterProvider registers one or more Readers, and each drives its own
// collection cadence (periodic push, or on-demand pull as with a
// Prometheus scrape). registerProducer is called once by the owning
// MeterProvider at build time.
type Reader interface {
	registerProducer(p producer)
	Collect(ctx context.Context) (ResourceMetrics, error)
	Temporality(kind InstrumentKind) AggregationTemporality
	DefaultAggregation(kind InstrumentKind) AggregationKind
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
	// String names the reader for diagnostics.
	String() string
}

// producer is implemented by MeterProvider; a Reader calls it to collect
// every registered Meter's current state.
type producer interface {
	produce(ctx context.Context, rd Reader) (ResourceMetrics, error)
}

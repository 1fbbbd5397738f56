package sdkmetric

import "context"

// MetricExporter sends a batch of collected ResourceMetrics out of
// process (spec.md §3, mirrors trace's SpanExporter). Temporality and
// default aggregation overrides let an exporter steer the pipeline's
// output shape the way OTLP push exporters prefer DELTA for synchronous
// instruments while Prometheus pull exporters prefer CUMULATIVE.
type MetricExporter interface {
	Export(ctx context.Context, data ResourceMetrics) error
	Temporality(kind InstrumentKind) AggregationTemporality
	DefaultAggregation(kind InstrumentKind) AggregationKind
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// noopExporter discards everything; used as a safe default and in tests
// that only exercise the collection path.
type noopExporter struct {
	temporality AggregationTemporality
}

// NewNoopExporter builds a MetricExporter that reports CUMULATIVE for
// every instrument kind (OTLP's default, per spec.md §4.3) and discards
// every export.
func NewNoopExporter() MetricExporter {
	return &noopExporter{temporality: CumulativeTemporality}
}

func (e *noopExporter) Export(context.Context, ResourceMetrics) error { return nil }
func (e *noopExporter) Temporality(InstrumentKind) AggregationTemporality {
	return e.temporality
}
func (e *noopExporter) DefaultAggregation(kind InstrumentKind) AggregationKind {
	return DefaultAggregation(kind, Advice{}, nil).Kind
}
func (e *noopExporter) ForceFlush(context.Context) error { return nil }
func (e *noopExporter) Shutdown(context.Context) error   { return nil }

package sdkmetric

import (
	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// AggregationKind names the member of the Aggregator family a view or the
// default-aggregation rule selected for an instrument (spec.md §4.2).
type AggregationKind int

const (
	AggregationDrop AggregationKind = iota
	AggregationSum
	AggregationLastValue
	AggregationExplicitBucketHistogram
)

// Aggregation describes which AggregatorHandle family member backs an
// instrument and any family-specific configuration (explicit boundaries).
type Aggregation struct {
	Kind       AggregationKind
	Boundaries []float64 // only meaningful when Kind == AggregationExplicitBucketHistogram
	NoMinMax   bool
}

// DefaultAggregation implements spec.md §4.2's default-aggregation
// selection rule: COUNTER/UP_DOWN_COUNTER/OBSERVABLE_COUNTER/
// OBSERVABLE_UP_DOWN_COUNTER -> Sum, HISTOGRAM -> ExplicitBucketHistogram
// (Advice boundaries override the built-in default), OBSERVABLE_GAUGE ->
// LastValue, anything else -> Drop (with a logged warning, since reaching
// this branch means a future instrument kind was added to the API without
// a matching SDK case).
func DefaultAggregation(kind InstrumentKind, advice Advice, logger *zap.Logger) Aggregation {
	switch kind {
	case KindCounter, KindUpDownCounter, KindObservableCounter, KindObservableUpDownCounter:
		return Aggregation{Kind: AggregationSum}
	case KindHistogram:
		agg := Aggregation{Kind: AggregationExplicitBucketHistogram}
		if len(advice.ExplicitBucketBoundaries) > 0 {
			agg.Boundaries = advice.ExplicitBucketBoundaries
		}
		return agg
	case KindObservableGauge:
		return Aggregation{Kind: AggregationLastValue}
	default:
		if logger != nil {
			logger.Warn("no default aggregation for instrument kind, dropping", zap.Int("kind", int(kind)))
		}
		return Aggregation{Kind: AggregationDrop}
	}
}

// boundariesOrDefault resolves the effective histogram boundaries for an
// Aggregation, falling back to aggregate.DefaultHistogramBoundaries.
func boundariesOrDefault(a Aggregation) []float64 {
	if len(a.Boundaries) > 0 {
		return a.Boundaries
	}
	return aggregate.DefaultHistogramBoundaries
}

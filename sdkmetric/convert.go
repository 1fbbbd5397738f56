package sdkmetric

import (
	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// toMetricPoint adapts an aggregate.Point[N] into the value-type-erased
// MetricPoint the rest of the package (and exporters) deal with, since Go
// generics can't be carried through the non-generic MetricData/Reader
// surface spec.md describes.
func toMetricPoint[N aggregate.Number](p aggregate.Point[N]) MetricPoint {
	mp := MetricPoint{
		Attributes: p.Attributes,
		StartTime:  p.StartTime,
		Time:       p.Time,
	}
	switch v := any(p.Sum).(type) {
	case int64:
		mp.SumInt64 = v
	case float64:
		mp.SumFloat64 = v
	}
	switch v := any(p.Gauge).(type) {
	case int64:
		mp.GaugeInt64 = v
	case float64:
		mp.GaugeFloat64 = v
	}
	if p.HasHistogram {
		h := p.Histogram
		mp.Histogram = Histogram{
			Boundaries: h.Boundaries,
			Counts:     h.BucketCounts,
			Count:      h.Count,
			HasMinMax:  h.HasMinMax,
		}
		switch sum := any(h.Sum).(type) {
		case int64:
			mp.Histogram.SumInt64 = sum
		case float64:
			mp.Histogram.SumFloat64 = sum
		}
		switch min := any(h.Min).(type) {
		case int64:
			mp.Histogram.MinInt64 = min
		case float64:
			mp.Histogram.MinFloat64 = min
		}
		switch max := any(h.Max).(type) {
		case int64:
			mp.Histogram.MaxInt64 = max
		case float64:
			mp.Histogram.MaxFloat64 = max
		}
	}
	for _, ex := range p.Exemplars {
		e := Exemplar{Time: ex.Time, Attributes: ex.Attributes, HasSpan: ex.HasSpan, SpanID: ex.SpanID, TraceID: ex.TraceID}
		switch v := any(ex.Value).(type) {
		case int64:
			e.Int64Value = v
		case float64:
			e.Float64Value = v
		}
		mp.Exemplars = append(mp.Exemplars, e)
	}
	return mp
}

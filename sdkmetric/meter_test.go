package sdkmetric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telemetry/sdk-core/attribute"
	apimetric "github.com/open-telemetry/sdk-core/metric"
)

// collectingExporter hands every exported ResourceMetrics to a test for
// inspection, bypassing the periodic timer by collecting on demand.
type collectingExporter struct {
	temporality AggregationTemporality
}

func (e *collectingExporter) Export(context.Context, ResourceMetrics) error { return nil }
func (e *collectingExporter) Temporality(InstrumentKind) AggregationTemporality {
	return e.temporality
}
func (e *collectingExporter) DefaultAggregation(kind InstrumentKind) AggregationKind {
	return DefaultAggregation(kind, apimetric.Advice{}, nil).Kind
}
func (e *collectingExporter) ForceFlush(context.Context) error { return nil }
func (e *collectingExporter) Shutdown(context.Context) error   { return nil }

func findMetric(rm ResourceMetrics, name string) (MetricData, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == name {
				return md, true
			}
		}
	}
	return MetricData{}, false
}

func TestCounterAccumulatesUnderCumulativeTemporality(t *testing.T) {
	exp := &collectingExporter{temporality: CumulativeTemporality}
	rd := NewPeriodicReader(exp)
	mp := NewMeterProvider(WithReader(rd))
	meter := mp.Meter("test")

	counter, err := meter.Int64Counter("requests")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)
	counter.Add(context.Background(), 4)

	rm, err := rd.Collect(context.Background())
	require.NoError(t, err)
	md, ok := findMetric(rm, "requests")
	require.True(t, ok)
	require.Len(t, md.Points, 1)
	assert.Equal(t, int64(7), md.Points[0].SumInt64)

	// CUMULATIVE: a second collect without new recordings reports the
	// same running total again rather than resetting to zero.
	rm2, err := rd.Collect(context.Background())
	require.NoError(t, err)
	md2, ok := findMetric(rm2, "requests")
	require.True(t, ok)
	assert.Equal(t, int64(7), md2.Points[0].SumInt64)
}

func TestCounterResetsUnderDeltaTemporality(t *testing.T) {
	exp := &collectingExporter{temporality: DeltaTemporality}
	rd := NewPeriodicReader(exp)
	mp := NewMeterProvider(WithReader(rd))
	meter := mp.Meter("test")

	counter, _ := meter.Int64Counter("requests")
	counter.Add(context.Background(), 10)

	rm, _ := rd.Collect(context.Background())
	md, ok := findMetric(rm, "requests")
	require.True(t, ok)
	assert.Equal(t, int64(10), md.Points[0].SumInt64)

	// nothing recorded since the last collect: DELTA reports no point.
	rm2, _ := rd.Collect(context.Background())
	_, ok = findMetric(rm2, "requests")
	assert.False(t, ok)
}

func TestCardinalityCapFoldsIntoOverflowSeries(t *testing.T) {
	exp := &collectingExporter{temporality: CumulativeTemporality}
	rd := NewPeriodicReader(exp)
	mp := NewMeterProvider(WithReader(rd), WithCardinalityLimit(3))
	meter := mp.Meter("test")

	counter, _ := meter.Int64Counter("requests")
	for i := 0; i < 10; i++ {
		counter.Add(context.Background(), 1, apimetric.WithAttributes(attribute.Int("shard", i)))
	}

	rm, _ := rd.Collect(context.Background())
	md, _ := findMetric(rm, "requests")
	// cap of 3 leaves at most 2 distinct real series plus one overflow series.
	assert.LessOrEqual(t, len(md.Points), 3)

	var sawOverflow bool
	for _, p := range md.Points {
		for _, kv := range p.Attributes.ToSlice() {
			if string(kv.Key) == "otel.metric.overflow" {
				sawOverflow = true
			}
		}
	}
	assert.True(t, sawOverflow)
}

func TestObservableGaugeReportsLatestCallbackValue(t *testing.T) {
	exp := &collectingExporter{temporality: CumulativeTemporality}
	rd := NewPeriodicReader(exp)
	mp := NewMeterProvider(WithReader(rd))
	meter := mp.Meter("test")

	gauge, err := meter.Int64ObservableGauge("queue_depth")
	require.NoError(t, err)
	_, err = meter.RegisterCallback(func(_ context.Context, o apimetric.Observer) error {
		o.ObserveInt64(gauge, 42)
		return nil
	}, gauge)
	require.NoError(t, err)

	rm, err := rd.Collect(context.Background())
	require.NoError(t, err)
	md, ok := findMetric(rm, "queue_depth")
	require.True(t, ok)
	require.Len(t, md.Points, 1)
	assert.Equal(t, int64(42), md.Points[0].GaugeInt64)
}

func TestHistogramRecordsAcrossReaders(t *testing.T) {
	expA := &collectingExporter{temporality: DeltaTemporality}
	expB := &collectingExporter{temporality: CumulativeTemporality}
	rdA := NewPeriodicReader(expA)
	rdB := NewPeriodicReader(expB)
	mp := NewMeterProvider(WithReader(rdA), WithReader(rdB))
	meter := mp.Meter("test")

	hist, err := meter.Int64Histogram("latency_ms")
	require.NoError(t, err)
	hist.Record(context.Background(), 15)
	hist.Record(context.Background(), 250)

	rmA, _ := rdA.Collect(context.Background())
	mdA, ok := findMetric(rmA, "latency_ms")
	require.True(t, ok)
	assert.Equal(t, uint64(2), mdA.Points[0].Histogram.Count)

	rmB, _ := rdB.Collect(context.Background())
	mdB, ok := findMetric(rmB, "latency_ms")
	require.True(t, ok)
	assert.Equal(t, uint64(2), mdB.Points[0].Histogram.Count)
}

func TestDuplicateInstrumentIdentityIsCaseInsensitive(t *testing.T) {
	exp := &collectingExporter{temporality: CumulativeTemporality}
	rd := NewPeriodicReader(exp)
	mp := NewMeterProvider(WithReader(rd))
	meter := mp.Meter("test").(*Meter)

	_, err := meter.Int64Counter("Requests")
	require.NoError(t, err)
	_, err = meter.Int64Counter("requests", apimetric.WithDescription("different"))
	require.NoError(t, err)

	meter.mu.Lock()
	_, ok := meter.byIdentity["requests"]
	meter.mu.Unlock()
	assert.True(t, ok)
}

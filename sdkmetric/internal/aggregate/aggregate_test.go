package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-telemetry/sdk-core/attribute"
)

func TestSumHandleAccumulatesAndResetsOnDelta(t *testing.T) {
	s := NewSum[int64](true, FilterAlwaysOff, nil)
	h := s.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})

	h.Record(ctx, 3)
	h.Record(ctx, 4)

	start, end := time.Now(), time.Now().Add(time.Second)
	p, ok := h.Aggregate(start, end, attribute.NewSet(), true)
	require.True(t, ok)
	require.True(t, p.HasSum)
	assert.Equal(t, int64(7), p.Sum)

	// a DELTA collect resets: the next point starts from zero again.
	p2, ok := h.Aggregate(start, end, attribute.NewSet(), true)
	require.True(t, ok)
	assert.Equal(t, int64(0), p2.Sum)
}

func TestSumHandleCumulativeNeverResets(t *testing.T) {
	s := NewSum[int64](true, FilterAlwaysOff, nil)
	h := s.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})
	h.Record(ctx, 5)

	p, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	assert.Equal(t, int64(5), p.Sum)
	p2, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	assert.Equal(t, int64(5), p2.Sum)
}

func TestPrecomputedSumDeltaDiffsAgainstPrevious(t *testing.T) {
	ps := NewPrecomputedSum[int64]()
	ps.Observe(10)
	p, ok := ps.Aggregate(time.Now(), time.Now(), attribute.NewSet(), Delta)
	require.True(t, ok)
	assert.Equal(t, int64(10), p.Sum)

	ps.Observe(15)
	p2, ok := ps.Aggregate(time.Now(), time.Now(), attribute.NewSet(), Delta)
	require.True(t, ok)
	assert.Equal(t, int64(5), p2.Sum)
}

func TestLastValueReportsMostRecentObservation(t *testing.T) {
	lv := NewLastValue[float64](FilterAlwaysOff, nil)
	h := lv.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})
	h.Record(ctx, 1.5)
	h.Record(ctx, 2.5)

	p, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	assert.Equal(t, 2.5, p.Gauge)
}

func TestHistogramBucketsRespectUpperInclusiveBoundary(t *testing.T) {
	hist := NewHistogram[float64]([]float64{10, 20}, true, FilterAlwaysOff, nil)
	h := hist.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})

	// bucket 0: (-inf, 10], bucket 1: (10, 20], bucket 2: (20, +inf)
	h.Record(ctx, 10)  // boundary value falls in the lower bucket
	h.Record(ctx, 15)
	h.Record(ctx, 25)

	p, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	require.True(t, p.HasHistogram)
	assert.Equal(t, []uint64{1, 1, 1}, p.Histogram.BucketCounts)
	assert.Equal(t, uint64(3), p.Histogram.Count)
	assert.Equal(t, float64(10), p.Histogram.Min)
	assert.Equal(t, float64(25), p.Histogram.Max)
}

func TestHistogramDropsNaN(t *testing.T) {
	hist := NewHistogram[float64](nil, false, FilterAlwaysOff, nil)
	h := hist.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})

	h.Record(ctx, math.NaN())
	h.Record(ctx, 5)

	p, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	assert.Equal(t, uint64(1), p.Histogram.Count)
}

func TestSumDropsNaN(t *testing.T) {
	s := NewSum[float64](true, FilterAlwaysOff, nil)
	h := s.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})
	h.Record(ctx, math.NaN())
	h.Record(ctx, 2)

	p, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), false)
	require.True(t, ok)
	assert.Equal(t, float64(2), p.Sum)
}

func TestDropAggregatorNeverProducesAPoint(t *testing.T) {
	d := NewDrop[int64]()
	h := d.NewHandle()
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})
	h.Record(ctx, 42)

	_, ok := h.Aggregate(time.Now(), time.Now(), attribute.NewSet(), true)
	assert.False(t, ok)
}

func TestAlignedHistogramReservoirKeepsLatestPerBucket(t *testing.T) {
	r := NewAlignedHistogramReservoir[float64]([]float64{10, 20})
	ctx := NewMeasureContext(false, [8]byte{}, [16]byte{})
	r.Offer(ctx, 5, nil, time.Now())
	r.Offer(ctx, 6, nil, time.Now()) // same bucket, overwrites
	r.Offer(ctx, 15, nil, time.Now())

	exemplars := r.Collect(nil)
	assert.Len(t, exemplars, 2)
}

package aggregate

import (
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// DefaultHistogramBoundaries is the explicit-bucket default the spec
// carries over from the reference SDK (spec.md §4.2).
var DefaultHistogramBoundaries = []float64{
	0, 5, 10, 25, 50, 75, 100, 250, 500, 750, 1000, 2500, 5000, 7500, 10000,
}

// Histogram is the ExplicitBucketHistogram AggregatorHandle family member
// (spec.md §4.2): HISTOGRAM instruments default to it, with Advice-supplied
// boundaries overriding DefaultHistogramBoundaries.
type Histogram[N Number] struct {
	boundaries []float64
	recordMinMax bool
	filter     ExemplarFilter
	newRes     func() Reservoir[N]
}

func NewHistogram[N Number](boundaries []float64, recordMinMax bool, filter ExemplarFilter, newRes func() Reservoir[N]) *Histogram[N] {
	if len(boundaries) == 0 {
		boundaries = DefaultHistogramBoundaries
	}
	return &Histogram[N]{boundaries: boundaries, recordMinMax: recordMinMax, filter: filter, newRes: newRes}
}

func (h *Histogram[N]) NewHandle() *HistogramHandle[N] {
	var res Reservoir[N]
	if h.newRes != nil {
		res = h.newRes()
	}
	return &HistogramHandle[N]{
		boundaries:   h.boundaries,
		counts:       make([]uint64, len(h.boundaries)+1),
		recordMinMax: h.recordMinMax,
		reservoir:    res,
		filter:       h.filter,
	}
}

// HistogramHandle accumulates counts into fixed buckets, per spec.md's
// "bucket i holds values in (boundaries[i-1], boundaries[i]]" rule, plus an
// overflow bucket for anything above the last boundary.
type HistogramHandle[N Number] struct {
	mu           sync.Mutex
	boundaries   []float64
	counts       []uint64
	count        uint64
	sum          N
	min, max     N
	hasMinMax    bool
	recordMinMax bool
	reservoir    Reservoir[N]
	filter       ExemplarFilter
}

func (h *HistogramHandle[N]) Record(ctx MeasureContext, value N) {
	if isNaN(value) {
		return
	}
	idx := bucketIndex(float64(value), h.boundaries)
	h.mu.Lock()
	h.counts[idx]++
	h.count++
	h.sum += value
	if h.recordMinMax {
		if !h.hasMinMax || value < h.min {
			h.min = value
		}
		if !h.hasMinMax || value > h.max {
			h.max = value
		}
		h.hasMinMax = true
	}
	if h.reservoir != nil && h.filter.Admit(ctx) {
		h.reservoir.Offer(ctx, value, nil, time.Now())
	}
	h.mu.Unlock()
}

func (h *HistogramHandle[N]) Aggregate(start, end time.Time, attrs attribute.Set, reset bool) (Point[N], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make([]uint64, len(h.counts))
	copy(counts, h.counts)
	hv := HistogramValue[N]{
		Boundaries:   h.boundaries,
		BucketCounts: counts,
		Count:        h.count,
		Sum:          h.sum,
		Min:          h.min,
		Max:          h.max,
		HasMinMax:    h.hasMinMax,
	}
	p := Point[N]{StartTime: start, Time: end, Attributes: attrs, HasHistogram: true, Histogram: hv}
	if h.reservoir != nil {
		p.Exemplars = h.reservoir.Collect(nil)
	}
	if reset {
		for i := range h.counts {
			h.counts[i] = 0
		}
		h.count = 0
		h.sum = 0
		h.hasMinMax = false
		var zero N
		h.min, h.max = zero, zero
		if h.reservoir != nil {
			h.reservoir.Reset()
		}
	}
	return p, true
}

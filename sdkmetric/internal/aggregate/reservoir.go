package aggregate

import (
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// ExemplarFilter decides whether a measurement is offered to a reservoir at
// all (spec.md §4.2 "Exemplars"): always_on, always_off, trace_based.
type ExemplarFilter int

const (
	FilterAlwaysOff ExemplarFilter = iota
	FilterAlwaysOn
	FilterTraceBased
)

func (f ExemplarFilter) Admit(ctx MeasureContext) bool {
	switch f {
	case FilterAlwaysOn:
		return true
	case FilterTraceBased:
		return ctx.sampledSpan
	default:
		return false
	}
}

// Reservoir samples a bounded number of Exemplars out of an unbounded
// stream of measurements for one attribute set. Two variants are described
// by spec.md: a fixed-size uniform sample (SimpleFixedSizeExemplarReservoir)
// and a per-histogram-bucket latest-seen sample
// (AlignedHistogramBucketExemplarReservoir).
type Reservoir[N Number] interface {
	Offer(ctx MeasureContext, value N, attrs []attribute.KeyValue, t time.Time)
	Collect(dropped []attribute.KeyValue) []Exemplar[N]
	Reset()
}

// FixedSizeReservoir keeps up to size exemplars using reservoir sampling
// (uniform over all Offer calls seen since the last Reset).
type FixedSizeReservoir[N Number] struct {
	size  int
	seen  int
	items []Exemplar[N]
	rng   func() uint64
}

// NewFixedSizeReservoir builds a reservoir of size slots. rng must return a
// uniformly distributed value; nil selects a default counter-based source
// (deterministic fallback, since this package avoids math/rand's global
// lock in the hot measurement path).
func NewFixedSizeReservoir[N Number](size int, rng func() uint64) *FixedSizeReservoir[N] {
	if size <= 0 {
		size = 1
	}
	return &FixedSizeReservoir[N]{size: size, rng: rng}
}

func (r *FixedSizeReservoir[N]) Offer(ctx MeasureContext, value N, attrs []attribute.KeyValue, t time.Time) {
	ex := Exemplar[N]{Value: value, Time: t, Attributes: attrs}
	if ctx.sampledSpan {
		ex.HasSpan = true
		ex.SpanID = ctx.spanID
		ex.TraceID = ctx.traceID
	}
	r.seen++
	if len(r.items) < r.size {
		r.items = append(r.items, ex)
		return
	}
	idx := r.next(r.seen)
	if idx < r.size {
		r.items[idx] = ex
	}
}

func (r *FixedSizeReservoir[N]) next(seen int) int {
	if r.rng == nil {
		return seen % (r.size * 2) // deterministic fallback, biased but bounded
	}
	return int(r.rng() % uint64(seen))
}

func (r *FixedSizeReservoir[N]) Collect(dropped []attribute.KeyValue) []Exemplar[N] {
	out := make([]Exemplar[N], len(r.items))
	copy(out, r.items)
	if len(dropped) > 0 {
		for i := range out {
			out[i].Attributes = append(append([]attribute.KeyValue{}, out[i].Attributes...), dropped...)
		}
	}
	return out
}

func (r *FixedSizeReservoir[N]) Reset() {
	r.items = nil
	r.seen = 0
}

// AlignedHistogramReservoir keeps the most recent measurement seen per
// explicit-bucket-histogram bucket, aligning exemplars to the instrument's
// own bucketing per spec.md's "aligned" reservoir kind.
type AlignedHistogramReservoir[N Number] struct {
	boundaries []float64
	slots      []Exemplar[N]
	has        []bool
}

func NewAlignedHistogramReservoir[N Number](boundaries []float64) *AlignedHistogramReservoir[N] {
	return &AlignedHistogramReservoir[N]{
		boundaries: boundaries,
		slots:      make([]Exemplar[N], len(boundaries)+1),
		has:        make([]bool, len(boundaries)+1),
	}
}

func (r *AlignedHistogramReservoir[N]) Offer(ctx MeasureContext, value N, attrs []attribute.KeyValue, t time.Time) {
	idx := bucketIndex(float64(value), r.boundaries)
	ex := Exemplar[N]{Value: value, Time: t, Attributes: attrs}
	if ctx.sampledSpan {
		ex.HasSpan = true
		ex.SpanID = ctx.spanID
		ex.TraceID = ctx.traceID
	}
	r.slots[idx] = ex
	r.has[idx] = true
}

func (r *AlignedHistogramReservoir[N]) Collect(dropped []attribute.KeyValue) []Exemplar[N] {
	var out []Exemplar[N]
	for i, ok := range r.has {
		if !ok {
			continue
		}
		ex := r.slots[i]
		if len(dropped) > 0 {
			ex.Attributes = append(append([]attribute.KeyValue{}, ex.Attributes...), dropped...)
		}
		out = append(out, ex)
	}
	return out
}

func (r *AlignedHistogramReservoir[N]) Reset() {
	for i := range r.has {
		r.has[i] = false
	}
}

// bucketIndex implements spec.md's "bucket i holds (boundaries[i-1],
// boundaries[i]]" rule, with a final overflow bucket for values beyond the
// last boundary.
func bucketIndex(v float64, boundaries []float64) int {
	for i, b := range boundaries {
		if v <= b {
			return i
		}
	}
	return len(boundaries)
}

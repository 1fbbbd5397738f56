package aggregate

import (
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// Sum is the AggregatorHandle family member that accumulates a running
// total, reporting it either as a DELTA (reset to zero after each collect)
// or CUMULATIVE (never reset) point depending on the reader's requested
// temporality.
type Sum[N Number] struct {
	monotonic bool
	newRes    func() Reservoir[N]
	filter    ExemplarFilter
}

// NewSum builds a Sum aggregator. monotonic distinguishes Counter (true,
// negative Record calls are dropped upstream by the synchronous storage) from
// UpDownCounter (false).
func NewSum[N Number](monotonic bool, filter ExemplarFilter, newRes func() Reservoir[N]) *Sum[N] {
	return &Sum[N]{monotonic: monotonic, newRes: newRes, filter: filter}
}

func (s *Sum[N]) NewHandle() *SumHandle[N] {
	var res Reservoir[N]
	if s.newRes != nil {
		res = s.newRes()
	}
	return &SumHandle[N]{filter: s.filter, reservoir: res}
}

// SumHandle is one attribute-set's running total.
type SumHandle[N Number] struct {
	mu        sync.Mutex
	value     N
	reservoir Reservoir[N]
	filter    ExemplarFilter
}

func (h *SumHandle[N]) Record(ctx MeasureContext, value N) {
	if isNaN(value) {
		return
	}
	h.mu.Lock()
	h.value += value
	if h.reservoir != nil && h.filter.Admit(ctx) {
		h.reservoir.Offer(ctx, value, nil, time.Now())
	}
	h.mu.Unlock()
}

func (h *SumHandle[N]) Aggregate(start, end time.Time, attrs attribute.Set, reset bool) (Point[N], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := Point[N]{StartTime: start, Time: end, Attributes: attrs, HasSum: true, Sum: h.value}
	if h.reservoir != nil {
		p.Exemplars = h.reservoir.Collect(nil)
	}
	if reset {
		h.value = 0
		if h.reservoir != nil {
			h.reservoir.Reset()
		}
	}
	return p, true
}

// PrecomputedSum accumulates asynchronous (observable) counter readings,
// which always arrive as cumulative values from the callback; the storage
// layer derives DELTA by diffing against the previous collection when the
// reader's requested temporality is DELTA (spec.md §4.3).
type PrecomputedSum[N Number] struct {
	mu   sync.Mutex
	last N
	cur  N
	set  bool
}

func NewPrecomputedSum[N Number]() *PrecomputedSum[N] { return &PrecomputedSum[N]{} }

// Observe records the latest callback-reported cumulative value.
func (p *PrecomputedSum[N]) Observe(value N) {
	p.mu.Lock()
	p.cur = value
	p.set = true
	p.mu.Unlock()
}

// Aggregate reports value as-is for CUMULATIVE, or (value - previous) for
// DELTA, per spec.md §4.3's temporality conversion rule.
func (p *PrecomputedSum[N]) Aggregate(start, end time.Time, attrs attribute.Set, temporality Temporality) (Point[N], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.set {
		return Point[N]{}, false
	}
	out := p.cur
	if temporality == Delta {
		out = p.cur - p.last
	}
	p.last = p.cur
	p.set = false
	return Point[N]{StartTime: start, Time: end, Attributes: attrs, HasSum: true, Sum: out}, true
}

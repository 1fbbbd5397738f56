package aggregate

import (
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// LastValue is the AggregatorHandle family member for OBSERVABLE_GAUGE
// instruments (spec.md §4.2): it reports the most recent recorded value.
// Aggregate with reset clears that value, so after a DELTA collect the
// handle reports no point until the next Record.
type LastValue[N Number] struct {
	filter ExemplarFilter
	newRes func() Reservoir[N]
}

func NewLastValue[N Number](filter ExemplarFilter, newRes func() Reservoir[N]) *LastValue[N] {
	return &LastValue[N]{filter: filter, newRes: newRes}
}

func (l *LastValue[N]) NewHandle() *LastValueHandle[N] {
	var res Reservoir[N]
	if l.newRes != nil {
		res = l.newRes()
	}
	return &LastValueHandle[N]{filter: l.filter, reservoir: res}
}

type LastValueHandle[N Number] struct {
	mu        sync.Mutex
	value     N
	set       bool
	reservoir Reservoir[N]
	filter    ExemplarFilter
}

func (h *LastValueHandle[N]) Record(ctx MeasureContext, value N) {
	if isNaN(value) {
		return
	}
	h.mu.Lock()
	h.value = value
	h.set = true
	if h.reservoir != nil && h.filter.Admit(ctx) {
		h.reservoir.Offer(ctx, value, nil, time.Now())
	}
	h.mu.Unlock()
}

func (h *LastValueHandle[N]) Aggregate(start, end time.Time, attrs attribute.Set, reset bool) (Point[N], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.set {
		return Point[N]{}, false
	}
	p := Point[N]{StartTime: start, Time: end, Attributes: attrs, HasGauge: true, Gauge: h.value}
	if h.reservoir != nil {
		p.Exemplars = h.reservoir.Collect(nil)
	}
	if reset {
		h.set = false
		if h.reservoir != nil {
			h.reservoir.Reset()
		}
	}
	return p, true
}

package aggregate

import (
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
)

// Drop is the AggregatorHandle family member for instruments that matched
// no view and whose default aggregation also resolved to Drop (spec.md
// §4.2's "otherwise Drop, with a warning logged once"): Record is a no-op
// and Aggregate never produces a point.
type Drop[N Number] struct{}

func NewDrop[N Number]() *Drop[N] { return &Drop[N]{} }

func (d *Drop[N]) NewHandle() *DropHandle[N] { return &DropHandle[N]{} }

type DropHandle[N Number] struct{}

func (h *DropHandle[N]) Record(MeasureContext, N) {}

func (h *DropHandle[N]) Aggregate(_, _ time.Time, _ attribute.Set, _ bool) (Point[N], bool) {
	return Point[N]{}, false
}

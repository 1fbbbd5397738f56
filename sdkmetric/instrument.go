// Package sdkmetric implements the metrics aggregation pipeline: the
// aggregator family, cardinality-limited per-attribute-set storage, the
// meter/callback registry and the periodic collect-and-export reader
// (spec.md §4.2/§4.3, components C3-C6).
package sdkmetric

import (
	"strings"

	apimetric "github.com/open-telemetry/sdk-core/metric"
)

// InstrumentKind re-exports the API's instrument kind enum so package
// consumers don't need to import both packages for this one type.
type InstrumentKind = apimetric.InstrumentKind

const (
	KindCounter                 = apimetric.KindCounter
	KindUpDownCounter           = apimetric.KindUpDownCounter
	KindHistogram                = apimetric.KindHistogram
	KindObservableCounter        = apimetric.KindObservableCounter
	KindObservableUpDownCounter  = apimetric.KindObservableUpDownCounter
	KindObservableGauge          = apimetric.KindObservableGauge
)

// ValueType re-exports the API's value-type enum.
type ValueType = apimetric.ValueType

const (
	Int64ValueType   = apimetric.Int64ValueType
	Float64ValueType = apimetric.Float64ValueType
)

// Advice re-exports the API's instrument hints.
type Advice = apimetric.Advice

// InstrumentDescriptor identifies an instrument (spec.md §3). Identity is
// case-insensitive on Name and ignores Advice: two descriptors with the
// same identity but different Description/Unit/Kind/ValueType trigger a
// duplicate-registration warning (spec.md §3, pinned in DESIGN.md's Open
// Question decisions: first registration wins).
type InstrumentDescriptor struct {
	Name        string
	Description string
	Unit        string
	Kind        InstrumentKind
	ValueType   ValueType
	Advice      Advice

	scopeName string
}

// identity is the case-insensitive-name key used for duplicate detection
// and view selector matching.
func (d InstrumentDescriptor) identity() string {
	return strings.ToLower(d.Name)
}

// sameIdentity reports whether d and other collide on name (case
// insensitive), which is the trigger condition for the duplicate warning
// regardless of whether the rest of the descriptor also matches.
func (d InstrumentDescriptor) sameIdentity(other InstrumentDescriptor) bool {
	return d.identity() == other.identity()
}

// equalNonIdentity reports whether every field other than Name's case and
// Advice/scopeName matches; used to suppress the duplicate-registration
// warning when two registrations are byte-for-byte equivalent.
func (d InstrumentDescriptor) equalNonIdentity(other InstrumentDescriptor) bool {
	return d.Description == other.Description &&
		d.Unit == other.Unit &&
		d.Kind == other.Kind &&
		d.ValueType == other.ValueType
}

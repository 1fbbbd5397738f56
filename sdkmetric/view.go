package sdkmetric

import (
	"path"
	"strings"

	"github.com/open-telemetry/sdk-core/attribute"
)

// InstrumentSelector matches instruments a View applies to (spec.md §4.2).
// Name supports a single '*' glob, matched case-insensitively; zero-value
// fields are wildcards. MeterVersion and MeterSchemaURL are not consulted
// by matching: a selector matches whatever their values.
type InstrumentSelector struct {
	Name           string
	Kind           InstrumentKind
	HasKind        bool
	MeterName      string
	MeterVersion   string
	MeterSchemaURL string
}

func (s InstrumentSelector) matches(d InstrumentDescriptor) bool {
	if s.Name != "" {
		ok, err := path.Match(strings.ToLower(s.Name), d.identity())
		if err != nil || !ok {
			return false
		}
	}
	if s.HasKind && s.Kind != d.Kind {
		return false
	}
	if s.MeterName != "" && s.MeterName != d.scopeName {
		return false
	}
	return true
}

// AttributesProcessor filters or renames attributes attached to recorded
// measurements before they reach storage (spec.md §4.2's "attribute
// filtering" View capability).
type AttributesProcessor func(attribute.Set) attribute.Set

// View rewrites the stream produced for instruments matching Selector:
// renaming it, overriding its Aggregation, filtering attributes, or
// capping cardinality independently of the reader-wide default (spec.md
// §4.2, component C5).
type View struct {
	Selector        InstrumentSelector
	Name            string
	Description     string
	Aggregation     *Aggregation
	AttributesProc  AttributesProcessor
	CardinalityCap  int // 0 means "use the reader/provider default"
}

// NewView is a convenience constructor mirroring the common case of
// renaming or re-aggregating one instrument or a name-glob of them.
func NewView(selector InstrumentSelector) View {
	return View{Selector: selector}
}

// resolvedStream is what a ViewRegistry produces for one (instrument,
// view) pairing: the effective descriptor after name/description
// overrides, plus the Aggregation and AttributesProcessor to apply.
type resolvedStream struct {
	descriptor     InstrumentDescriptor
	aggregation    Aggregation
	attributesProc AttributesProcessor
	cardinalityCap int
}

// ViewRegistry holds the ordered list of Views configured on a
// MeterProvider and resolves, per instrument, the set of streams it
// should feed (spec.md §4.2: an instrument matching zero views still
// gets exactly one default stream; matching N views produces N streams).
type ViewRegistry struct {
	views          []View
	defaultCardCap int
}

func NewViewRegistry(defaultCardinalityCap int, views ...View) *ViewRegistry {
	return &ViewRegistry{views: views, defaultCardCap: defaultCardinalityCap}
}

// Resolve returns the streams instrument d (registered via a Meter whose
// reader-reported default aggregation is readerDefault) should feed.
func (r *ViewRegistry) Resolve(d InstrumentDescriptor, readerDefaultKind AggregationKind) []resolvedStream {
	var matched []resolvedStream
	for _, v := range r.views {
		if !v.Selector.matches(d) {
			continue
		}
		s := resolvedStream{descriptor: d, cardinalityCap: r.defaultCardCap}
		if v.Name != "" {
			s.descriptor.Name = v.Name
		}
		if v.Description != "" {
			s.descriptor.Description = v.Description
		}
		if v.Aggregation != nil {
			s.aggregation = *v.Aggregation
		} else {
			s.aggregation = Aggregation{Kind: readerDefaultKind}
		}
		s.attributesProc = v.AttributesProc
		if v.CardinalityCap > 0 {
			s.cardinalityCap = v.CardinalityCap
		}
		matched = append(matched, s)
	}
	if len(matched) > 0 {
		return matched
	}
	return []resolvedStream{{
		descriptor:     d,
		aggregation:    Aggregation{Kind: readerDefaultKind},
		cardinalityCap: r.defaultCardCap,
	}}
}

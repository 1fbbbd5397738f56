// Package sdktrace implements the tracing pipeline: live spans, the batched
// export processor and the provider that wires them together (spec.md §4.1,
// component C7; §3 for the live-span data model, component C1/C2).
package sdktrace

import (
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	"github.com/open-telemetry/sdk-core/resource"
	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// Event is a timestamped annotation recorded on a span.
type Event struct {
	Name                  string
	Time                  time.Time
	Attributes            []attribute.KeyValue
	DroppedAttributeCount int
}

// Link associates a span with another SpanContext, e.g. a batch's trigger.
type Link struct {
	SpanContext           coretrace.SpanContext
	Attributes            []attribute.KeyValue
	DroppedAttributeCount int
}

// span is the live, mutable representation of a span. Ownership: the
// creating goroutine owns span until End(), which freezes it into a
// ReadOnlySpan snapshot delivered to processors (spec.md §3 span
// lifecycle). A mutex guards fields touched after creation (SetAttributes,
// AddEvent, SetStatus, End) since instrumented code is not required to
// confine a span to a single goroutine, but the common case of a single
// owning goroutine pays only uncontended-lock cost.
type span struct {
	mu sync.Mutex

	name       string
	sc         coretrace.SpanContext
	parent     coretrace.SpanContext
	kind       coretrace.SpanKind
	startTime  time.Time
	endTime    time.Time
	ended      bool
	status     Status
	attrLimits attribute.Limits

	attrs              []attribute.KeyValue
	droppedAttrs       int
	events             []Event
	droppedEvents      int
	links              []Link
	droppedLinks       int
	maxEvents          int
	maxLinks           int
	childCount         int

	tracer *tracer
}

// Status mirrors coretrace.Status; kept as a distinct alias point so callers
// import sdktrace without reaching into the trace package for this one type.
type Status = coretrace.Status

var _ ReadOnlySpan = (*spanSnapshot)(nil)
var _ Span = (*span)(nil)

// Span is the mutable interface instrumented code uses during a span's
// lifetime.
type Span interface {
	SpanContext() coretrace.SpanContext
	IsRecording() bool
	SetStatus(code coretrace.StatusCode, description string)
	SetName(name string)
	SetAttributes(kvs ...attribute.KeyValue)
	AddEvent(name string, kvs ...attribute.KeyValue)
	AddLink(link Link)
	End(opts ...EndOption)
}

// EndOption configures End, e.g. its end timestamp (WithEndTime).
type EndOption func(*endConfig)

type endConfig struct {
	timestamp time.Time
}

// WithEndTime overrides the end timestamp instead of using time.Now().
func WithEndTime(t time.Time) EndOption {
	return func(c *endConfig) { c.timestamp = t }
}

func (s *span) SpanContext() coretrace.SpanContext {
	return s.sc
}

func (s *span) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended
}

func (s *span) SetStatus(code coretrace.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	// Per OpenTelemetry semantics, Unset must never downgrade an existing
	// Error/OK status.
	if code == coretrace.StatusCodeUnset {
		return
	}
	s.status = Status{Code: code, Description: description}
}

func (s *span) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.name = name
}

func (s *span) SetAttributes(kvs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.addAttributes(kvs)
}

func (s *span) addAttributes(kvs []attribute.KeyValue) {
	merged := append(append([]attribute.KeyValue{}, s.attrs...), kvs...)
	out, _ := s.attrLimits.Apply(merged)
	added := len(out) - len(s.attrs)
	if added < len(kvs) {
		s.droppedAttrs += len(kvs) - added
	}
	s.attrs = out
}

func (s *span) AddEvent(name string, kvs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if s.maxEvents > 0 && len(s.events) >= s.maxEvents {
		s.droppedEvents++
		return
	}
	out, dropped := s.attrLimits.Apply(kvs)
	s.events = append(s.events, Event{
		Name:                  name,
		Time:                  time.Now(),
		Attributes:            out,
		DroppedAttributeCount: dropped,
	})
}

func (s *span) AddLink(link Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if s.maxLinks > 0 && len(s.links) >= s.maxLinks {
		s.droppedLinks++
		return
	}
	link.Attributes, link.DroppedAttributeCount = s.attrLimits.Apply(link.Attributes)
	s.links = append(s.links, link)
}

// End freezes the span and hands an immutable snapshot to the tracer
// provider's processors, whether or not it is sampled. Calling End twice is a no-op on the second call: the
// first end() wins.
func (s *span) End(opts ...EndOption) {
	cfg := endConfig{timestamp: time.Now()}
	for _, o := range opts {
		o(&cfg)
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.endTime = cfg.timestamp
	snap := s.snapshot()
	s.mu.Unlock()

	if s.tracer != nil {
		s.tracer.provider.onEnd(snap)
	}
}

// snapshot must be called with s.mu held.
func (s *span) snapshot() *spanSnapshot {
	return &spanSnapshot{
		name:          s.name,
		sc:            s.sc,
		parent:        s.parent,
		kind:          s.kind,
		startTime:     s.startTime,
		endTime:       s.endTime,
		attrs:         append([]attribute.KeyValue{}, s.attrs...),
		droppedAttrs:  s.droppedAttrs,
		events:        append([]Event{}, s.events...),
		droppedEvents: s.droppedEvents,
		links:         append([]Link{}, s.links...),
		droppedLinks:  s.droppedLinks,
		status:        s.status,
		childCount:    s.childCount,
		scope:         s.tracer.scope,
		resource:      s.tracer.provider.resource,
	}
}

// ReadOnlySpan is the frozen view of a span delivered to SpanProcessors and
// SpanExporters after End() (spec.md §3: "SpanData").
type ReadOnlySpan interface {
	Name() string
	SpanContext() coretrace.SpanContext
	Parent() coretrace.SpanContext
	SpanKind() coretrace.SpanKind
	StartTime() time.Time
	EndTime() time.Time
	Attributes() []attribute.KeyValue
	DroppedAttributes() int
	Events() []Event
	DroppedEvents() int
	Links() []Link
	DroppedLinks() int
	Status() Status
	ChildSpanCount() int
	InstrumentationScope() instrumentation.Scope
	Resource() resource.Resource
}

// spanSnapshot is the immutable SpanData delivered to processors.
type spanSnapshot struct {
	name          string
	sc            coretrace.SpanContext
	parent        coretrace.SpanContext
	kind          coretrace.SpanKind
	startTime     time.Time
	endTime       time.Time
	attrs         []attribute.KeyValue
	droppedAttrs  int
	events        []Event
	droppedEvents int
	links         []Link
	droppedLinks  int
	status        Status
	childCount    int
	scope         instrumentation.Scope
	resource      resource.Resource
}

func (s *spanSnapshot) Name() string                              { return s.name }
func (s *spanSnapshot) SpanContext() coretrace.SpanContext        { return s.sc }
func (s *spanSnapshot) Parent() coretrace.SpanContext             { return s.parent }
func (s *spanSnapshot) SpanKind() coretrace.SpanKind              { return s.kind }
func (s *spanSnapshot) StartTime() time.Time                      { return s.startTime }
func (s *spanSnapshot) EndTime() time.Time                        { return s.endTime }
func (s *spanSnapshot) Attributes() []attribute.KeyValue          { return s.attrs }
func (s *spanSnapshot) DroppedAttributes() int                    { return s.droppedAttrs }
func (s *spanSnapshot) Events() []Event                           { return s.events }
func (s *spanSnapshot) DroppedEvents() int                        { return s.droppedEvents }
func (s *spanSnapshot) Links() []Link                             { return s.links }
func (s *spanSnapshot) DroppedLinks() int                         { return s.droppedLinks }
func (s *spanSnapshot) Status() Status                            { return s.status }
func (s *spanSnapshot) ChildSpanCount() int                       { return s.childCount }
func (s *spanSnapshot) InstrumentationScope() instrumentation.Scope { return s.scope }
func (s *spanSnapshot) Resource() resource.Resource               { return s.resource }

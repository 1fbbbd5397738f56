package sdktrace

import (
	"context"
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	"github.com/open-telemetry/sdk-core/resource"
	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// TracerProviderOption configures a TracerProvider.
type TracerProviderOption func(*tracerProviderConfig)

type tracerProviderConfig struct {
	resource    resource.Resource
	sampler     Sampler
	idGenerator IDGenerator
	processors  []SpanProcessor
	spanLimits  SpanLimits
}

// SpanLimits bounds per-span attribute/event/link counts (spec.md §3).
type SpanLimits struct {
	AttributeLimits attribute.Limits
	EventCountLimit int
	LinkCountLimit  int
}

var DefaultSpanLimits = SpanLimits{
	AttributeLimits: attribute.DefaultLimits,
	EventCountLimit: 128,
	LinkCountLimit:  128,
}

func WithResource(r resource.Resource) TracerProviderOption {
	return func(c *tracerProviderConfig) { c.resource = r }
}
func WithSampler(s Sampler) TracerProviderOption {
	return func(c *tracerProviderConfig) { c.sampler = s }
}
func WithIDGenerator(g IDGenerator) TracerProviderOption {
	return func(c *tracerProviderConfig) { c.idGenerator = g }
}
func WithSpanProcessor(p SpanProcessor) TracerProviderOption {
	return func(c *tracerProviderConfig) { c.processors = append(c.processors, p) }
}
func WithSpanLimits(l SpanLimits) TracerProviderOption {
	return func(c *tracerProviderConfig) { c.spanLimits = l }
}

// TracerProvider wires a Resource, Sampler and a chain of SpanProcessors
// into a source of Tracers (spec.md §4.4/§8, component C8). It is built
// once and lives until Shutdown.
type TracerProvider struct {
	mu         sync.Mutex
	cfg        tracerProviderConfig
	resource   resource.Resource
	tracers    map[instrumentation.Scope]*tracer
	shutdownMu sync.Mutex
	isShutdown bool
}

// NewTracerProvider builds a TracerProvider from opts.
func NewTracerProvider(opts ...TracerProviderOption) *TracerProvider {
	cfg := tracerProviderConfig{
		resource:    resource.Empty,
		sampler:     AlwaysSample{},
		idGenerator: NewRandomIDGenerator(),
		spanLimits:  DefaultSpanLimits,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &TracerProvider{
		cfg:      cfg,
		resource: cfg.resource,
		tracers:  make(map[instrumentation.Scope]*tracer),
	}
}

// Tracer returns a Tracer for the given instrumentation scope name,
// creating it on first use.
func (p *TracerProvider) Tracer(name string, opts ...instrumentation.Scope) *tracer {
	scope := instrumentation.Scope{Name: name}
	if len(opts) > 0 {
		scope = opts[0]
		scope.Name = name
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.tracers[scope]; ok {
		return t
	}
	t := &tracer{provider: p, scope: scope}
	p.tracers[scope] = t
	return t
}

// onEnd fans a finished span snapshot out to every registered processor, in
// registration order, matching the per-producer-thread ordering guarantee
// of spec.md §5 (no cross-processor ordering is promised beyond that).
func (p *TracerProvider) onEnd(s ReadOnlySpan) {
	for _, proc := range p.cfg.processors {
		proc.OnEnd(s)
	}
}

// ForceFlush flushes every registered processor.
func (p *TracerProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, proc := range p.cfg.processors {
		if err := proc.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every registered processor exactly once.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if p.isShutdown {
		return nil
	}
	p.isShutdown = true
	var firstErr error
	for _, proc := range p.cfg.processors {
		if err := proc.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// tracer creates spans on behalf of one instrumentation scope.
type tracer struct {
	provider *TracerProvider
	scope    instrumentation.Scope
}

// SpanStartOption configures StartSpan.
type SpanStartOption func(*spanStartConfig)

type spanStartConfig struct {
	kind       coretrace.SpanKind
	attrs      []attribute.KeyValue
	links      []Link
	timestamp  time.Time
	newRoot    bool
}

func WithSpanKind(k coretrace.SpanKind) SpanStartOption {
	return func(c *spanStartConfig) { c.kind = k }
}
func WithStartAttributes(kvs ...attribute.KeyValue) SpanStartOption {
	return func(c *spanStartConfig) { c.attrs = kvs }
}
func WithLinks(links ...Link) SpanStartOption {
	return func(c *spanStartConfig) { c.links = links }
}
func WithNewRoot() SpanStartOption {
	return func(c *spanStartConfig) { c.newRoot = true }
}
func WithTimestamp(t time.Time) SpanStartOption {
	return func(c *spanStartConfig) { c.timestamp = t }
}

// StartSpan creates a new span as a child of the SpanContext carried by
// parent (or a new root if parent is invalid or WithNewRoot is set),
// applying the provider's Sampler.
func (t *tracer) StartSpan(parent coretrace.SpanContext, name string, opts ...SpanStartOption) Span {
	cfg := spanStartConfig{kind: coretrace.SpanKindInternal, timestamp: time.Now()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.newRoot {
		parent = coretrace.SpanContext{}
	}

	traceID, spanID := t.provider.cfg.idGenerator.NewIDs(parent)

	result := t.provider.cfg.sampler.ShouldSample(SamplingParameters{
		ParentContext: parent,
		TraceID:       traceID,
		Name:          name,
		Kind:          cfg.kind,
		Attributes:    cfg.attrs,
		Links:         cfg.links,
	})

	flags := coretrace.TraceFlags(0).WithSampled(result.Decision == RecordAndSample)
	sc := coretrace.NewSpanContext(coretrace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		TraceState: result.TraceState,
	})

	if result.Decision == Drop {
		return nonRecordingSpan{sc: sc}
	}

	limits := t.provider.cfg.spanLimits
	attrs, _ := limits.AttributeLimits.Apply(append(append([]attribute.KeyValue{}, cfg.attrs...), result.Attributes...))

	s := &span{
		name:       name,
		sc:         sc,
		parent:     parent,
		kind:       cfg.kind,
		startTime:  cfg.timestamp,
		attrLimits: limits.AttributeLimits,
		attrs:      attrs,
		maxEvents:  limits.EventCountLimit,
		maxLinks:   limits.LinkCountLimit,
		links:      cfg.links,
		tracer:     t,
	}
	return s
}

// nonRecordingSpan is returned for Drop decisions: it carries a valid
// SpanContext for propagation but ignores every mutation.
type nonRecordingSpan struct {
	sc coretrace.SpanContext
}

func (s nonRecordingSpan) SpanContext() coretrace.SpanContext { return s.sc }
func (nonRecordingSpan) IsRecording() bool                    { return false }
func (nonRecordingSpan) SetStatus(coretrace.StatusCode, string) {}
func (nonRecordingSpan) SetName(string)                       {}
func (nonRecordingSpan) SetAttributes(...attribute.KeyValue)  {}
func (nonRecordingSpan) AddEvent(string, ...attribute.KeyValue) {}
func (nonRecordingSpan) AddLink(Link)                         {}
func (nonRecordingSpan) End(...EndOption)                     {}

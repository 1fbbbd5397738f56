package sdklog

import (
	"context"
	"sync"
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	"github.com/open-telemetry/sdk-core/resource"
	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// LoggerProviderOption configures a LoggerProvider.
type LoggerProviderOption func(*loggerProviderConfig)

type loggerProviderConfig struct {
	resource   resource.Resource
	processors []LogRecordProcessor
}

func WithResource(r resource.Resource) LoggerProviderOption {
	return func(c *loggerProviderConfig) { c.resource = r }
}
func WithLogRecordProcessor(p LogRecordProcessor) LoggerProviderOption {
	return func(c *loggerProviderConfig) { c.processors = append(c.processors, p) }
}

// LoggerProvider wires a Resource and a chain of LogRecordProcessors into a
// source of Loggers, the log-signal analogue of sdktrace.TracerProvider.
type LoggerProvider struct {
	mu         sync.Mutex
	cfg        loggerProviderConfig
	resource   resource.Resource
	loggers    map[instrumentation.Scope]*Logger
	shutdownMu sync.Mutex
	isShutdown bool
}

// NewLoggerProvider builds a LoggerProvider from opts.
func NewLoggerProvider(opts ...LoggerProviderOption) *LoggerProvider {
	cfg := loggerProviderConfig{resource: resource.Empty}
	for _, o := range opts {
		o(&cfg)
	}
	return &LoggerProvider{
		cfg:      cfg,
		resource: cfg.resource,
		loggers:  make(map[instrumentation.Scope]*Logger),
	}
}

// Logger returns a Logger for the given instrumentation scope name,
// creating it on first use.
func (p *LoggerProvider) Logger(name string, opts ...instrumentation.Scope) *Logger {
	scope := instrumentation.Scope{Name: name}
	if len(opts) > 0 {
		scope = opts[0]
		scope.Name = name
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.loggers[scope]; ok {
		return l
	}
	l := &Logger{provider: p, scope: scope}
	p.loggers[scope] = l
	return l
}

// onEmit fans a completed Record out to every registered processor, in
// registration order, mirroring TracerProvider.onEnd's ordering guarantee.
func (p *LoggerProvider) onEmit(r Record) {
	for _, proc := range p.cfg.processors {
		proc.OnEmit(r)
	}
}

// ForceFlush flushes every registered processor.
func (p *LoggerProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, proc := range p.cfg.processors {
		if err := proc.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every registered processor exactly once.
func (p *LoggerProvider) Shutdown(ctx context.Context) error {
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

// Logger emits Records on behalf of one instrumentation scope.
type Logger struct {
	provider *LoggerProvider
	scope    instrumentation.Scope
}

// EmitOption configures Emit.
type EmitOption func(*emitConfig)

type emitConfig struct {
	timestamp    time.Time
	severity     Severity
	severityText string
	attrs        []attribute.KeyValue
	spanCtx      coretrace.SpanContext
}

func WithTimestamp(t time.Time) EmitOption {
	return func(c *emitConfig) { c.timestamp = t }
}
func WithSeverity(s Severity) EmitOption {
	return func(c *emitConfig) { c.severity = s }
}
func WithSeverityText(s string) EmitOption {
	return func(c *emitConfig) { c.severityText = s }
}
func WithAttributes(kvs ...attribute.KeyValue) EmitOption {
	return func(c *emitConfig) { c.attrs = kvs }
}

// WithSpanContext correlates the emitted Record with an active span,
// carrying spec.md's cross-signal correlation requirement into the log
// pipeline: exporters can join logs back to the trace that produced them.
func WithSpanContext(sc coretrace.SpanContext) EmitOption {
	return func(c *emitConfig) { c.spanCtx = sc }
}

// Emit constructs a Record from body and opts and hands it to every
// processor registered on the owning LoggerProvider.
func (l *Logger) Emit(body string, opts ...EmitOption) {
	now := time.Now()
	cfg := emitConfig{timestamp: now, severity: SeverityInfo}
	for _, o := range opts {
		o(&cfg)
	}

	r := Record{
		Timestamp:         cfg.timestamp,
		ObservedTimestamp: now,
		Severity:          cfg.severity,
		SeverityText:      cfg.severityText,
		Body:              body,
		Attributes:        cfg.attrs,
		Resource:          l.provider.resource,
		Scope:             l.scope,
	}
	if cfg.spanCtx.IsValid() {
		r.TraceID = cfg.spanCtx.TraceID()
		r.SpanID = cfg.spanCtx.SpanID()
		r.TraceFlags = cfg.spanCtx.TraceFlags()
	}

	l.provider.onEmit(r)
}

package sdkmetric

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/instrumentation"
	apimetric "github.com/open-telemetry/sdk-core/metric"
	"github.com/open-telemetry/sdk-core/resource"
)

// MeterProviderOption configures a MeterProvider.
type MeterProviderOption func(*meterProviderConfig)

type meterProviderConfig struct {
	resource              resource.Resource
	readers               []Reader
	views                 []View
	defaultCardinalityCap int
	logger                *zap.Logger
}

func WithResource(r resource.Resource) MeterProviderOption {
	return func(c *meterProviderConfig) { c.resource = r }
}
func WithReader(rd Reader) MeterProviderOption {
	return func(c *meterProviderConfig) { c.readers = append(c.readers, rd) }
}
func WithView(v View) MeterProviderOption {
	return func(c *meterProviderConfig) { c.views = append(c.views, v) }
}
func WithCardinalityLimit(n int) MeterProviderOption {
	return func(c *meterProviderConfig) { c.defaultCardinalityCap = n }
}
func WithMeterLogger(l *zap.Logger) MeterProviderOption {
	return func(c *meterProviderConfig) { c.logger = l }
}

// MeterProvider is the root of the metrics pipeline (spec.md §4.3,
// component C8): it owns the Readers, the shared view registry, and every
// Meter created through it. It satisfies both apimetric.MeterProvider and
// the producer interface each Reader calls back into.
type MeterProvider struct {
	cfg   meterProviderConfig
	state *meterSharedState

	shutdownMu sync.Mutex
	isShutdown bool
}

// NewMeterProvider builds a MeterProvider and starts every configured
// Reader's collection loop.
func NewMeterProvider(opts ...MeterProviderOption) *MeterProvider {
	cfg := meterProviderConfig{
		resource:              resource.Empty,
		defaultCardinalityCap: defaultCardinalityLimit,
		logger:                zap.NewNop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	if len(cfg.readers) == 0 {
		cfg.readers = []Reader{NewPeriodicReader(NewNoopExporter())}
	}
	registry := NewViewRegistry(cfg.defaultCardinalityCap, cfg.views...)
	p := &MeterProvider{
		cfg:   cfg,
		state: newMeterSharedState(cfg.readers, registry, cfg.logger),
	}
	for _, rd := range cfg.readers {
		rd.registerProducer(p)
	}
	return p
}

// Meter returns the Meter for the given instrumentation scope name,
// creating it on first use (spec.md §4.3).
func (p *MeterProvider) Meter(name string, opts ...apimetric.MeterOption) apimetric.Meter {
	cfg := apimetric.MeterConfig{}
	for _, o := range opts {
		o.applyMeter(&cfg)
	}
	scope := instrumentation.Scope{Name: name, Version: cfg.Version, SchemaURL: cfg.SchemaURL}
	return p.state.meter(scope)
}

// produce implements the producer interface called by each Reader's
// Collect: it runs every meter's callbacks once and gathers that
// reader's streams into a ResourceMetrics snapshot.
func (p *MeterProvider) produce(ctx context.Context, rd Reader) (ResourceMetrics, error) {
	idx := p.readerIndex(rd)
	if idx < 0 {
		return ResourceMetrics{}, nil
	}
	now := time.Now()
	scopeMetrics, err := p.state.collectAll(ctx, idx, now, now)
	return ResourceMetrics{Resource: p.cfg.resource, ScopeMetrics: scopeMetrics}, err
}

func (p *MeterProvider) readerIndex(rd Reader) int {
	for i, r := range p.cfg.readers {
		if r == rd {
			return i
		}
	}
	return -1
}

// ForceFlush flushes every reader.
func (p *MeterProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, rd := range p.cfg.readers {
		if err := rd.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts every reader down exactly once.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if p.isShutdown {
		return nil
	}
	p.isShutdown = true
	var firstErr error
	for _, rd := range p.cfg.readers {
		if err := rd.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

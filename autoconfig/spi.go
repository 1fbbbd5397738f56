package autoconfig

import (
	"context"
	"sort"
	"sync"

	"github.com/open-telemetry/sdk-core/resource"
	"github.com/open-telemetry/sdk-core/sdklog"
	"github.com/open-telemetry/sdk-core/sdkmetric"
	"github.com/open-telemetry/sdk-core/sdktrace"
)

// The SPI providers below replace the reference implementation's
// classpath scanning (java.util.ServiceLoader): Go has no runtime
// classpath, so autoconfig instead holds compile-time registries that
// an import's init() function populates, matching spec.md §4.5's
// "pluggable named implementations selected by a configuration property"
// without requiring dynamic loading.

// ConfigurableSpanExporterProvider constructs a named span exporter from
// merged Properties (spec.md §4.5).
type ConfigurableSpanExporterProvider interface {
	Name() string
	Create(props *Properties) (sdktrace.SpanExporter, error)
}

// ConfigurableMetricExporterProvider constructs a named metric exporter.
type ConfigurableMetricExporterProvider interface {
	Name() string
	Create(props *Properties) (sdkmetric.MetricExporter, error)
}

// ConfigurableMetricReaderProvider constructs a named metric reader given
// an already-built exporter (e.g. "periodic" wraps any exporter, "pull"
// exposes one directly) — the reader-name-vs-exporter-name distinction
// DESIGN.md pins as an Open Question decision.
type ConfigurableMetricReaderProvider interface {
	Name() string
	Create(props *Properties, exporter sdkmetric.MetricExporter) (sdkmetric.Reader, error)
}

// ConfigurableLogRecordExporterProvider constructs a named log record
// exporter, the SPI category SPEC_FULL.md §3 names explicitly for the
// supplemental log pipeline.
type ConfigurableLogRecordExporterProvider interface {
	Name() string
	Create(props *Properties) (sdklog.LogRecordExporter, error)
}

// ConfigurableSamplerProvider constructs a named Sampler.
type ConfigurableSamplerProvider interface {
	Name() string
	Create(props *Properties) (sdktrace.Sampler, error)
}

// ConfigurablePropagatorProvider constructs a named propagator. Wire
// format propagation is out of this module's scope (spec.md's
// Non-goals), so this returns an opaque handle a customizer can act on.
type ConfigurablePropagatorProvider interface {
	Name() string
	Create(props *Properties) (any, error)
}

// ResourceProvider contributes attributes to the autodetected Resource
// (spec.md §4.5's resource detector chain).
type ResourceProvider interface {
	Name() string
	Create(ctx context.Context, props *Properties) (resource.Resource, error)
}

// AutoConfigurationCustomizerProvider registers Customizer chains against
// the Customizers bundle passed to Build (spec.md §4.5: customizers are
// themselves SPI-discovered, ordered by Order()).
type AutoConfigurationCustomizerProvider interface {
	Order() int
	Customize(c *Customizers)
}

// Registry is the compile-time stand-in for ServiceLoader: providers
// register themselves via the Registry's Register* methods, usually
// from an init() in the file that defines them, and Build resolves one by
// the configuration property naming it.
type Registry struct {
	mu                     sync.Mutex
	spanExporters          map[string]ConfigurableSpanExporterProvider
	metricExporters        map[string]ConfigurableMetricExporterProvider
	logExporters           map[string]ConfigurableLogRecordExporterProvider
	metricReaders          map[string]ConfigurableMetricReaderProvider
	samplers               map[string]ConfigurableSamplerProvider
	propagators            map[string]ConfigurablePropagatorProvider
	resourceProviders       []ResourceProvider
	customizerProviders     []AutoConfigurationCustomizerProvider
}

func NewRegistry() *Registry {
	return &Registry{
		spanExporters:   make(map[string]ConfigurableSpanExporterProvider),
		metricExporters: make(map[string]ConfigurableMetricExporterProvider),
		logExporters:    make(map[string]ConfigurableLogRecordExporterProvider),
		metricReaders:   make(map[string]ConfigurableMetricReaderProvider),
		samplers:        make(map[string]ConfigurableSamplerProvider),
		propagators:     make(map[string]ConfigurablePropagatorProvider),
	}
}

func (r *Registry) RegisterSpanExporter(p ConfigurableSpanExporterProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spanExporters[p.Name()] = p
}

func (r *Registry) RegisterMetricExporter(p ConfigurableMetricExporterProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metricExporters[p.Name()] = p
}

func (r *Registry) RegisterLogRecordExporter(p ConfigurableLogRecordExporterProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logExporters[p.Name()] = p
}

func (r *Registry) RegisterMetricReader(p ConfigurableMetricReaderProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metricReaders[p.Name()] = p
}

func (r *Registry) RegisterSampler(p ConfigurableSamplerProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samplers[p.Name()] = p
}

func (r *Registry) RegisterPropagator(p ConfigurablePropagatorProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propagators[p.Name()] = p
}

func (r *Registry) RegisterResourceProvider(p ResourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resourceProviders = append(r.resourceProviders, p)
}

func (r *Registry) RegisterCustomizerProvider(p AutoConfigurationCustomizerProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customizerProviders = append(r.customizerProviders, p)
}

// orderedCustomizerProviders returns every registered customizer
// provider sorted by Order() ascending, spec.md §4.5's ordering rule.
func (r *Registry) orderedCustomizerProviders() []AutoConfigurationCustomizerProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AutoConfigurationCustomizerProvider, len(r.customizerProviders))
	copy(out, r.customizerProviders)
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}

// DefaultRegistry is populated by this module's own built-in providers
// (defaults.go) and by any importer's init() functions; Build uses it
// unless a caller supplies its own Registry for testing.
var DefaultRegistry = NewRegistry()

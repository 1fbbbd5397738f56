package autoconfig

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/open-telemetry/sdk-core/resource"
	"github.com/open-telemetry/sdk-core/sdklog"
	"github.com/open-telemetry/sdk-core/sdkmetric"
	"github.com/open-telemetry/sdk-core/sdktrace"
)

// Closeable is anything Build must tear down, in reverse construction
// order, if a later step of the assembly fails (spec.md §4.5's partial-
// failure cleanup rule).
type Closeable interface {
	Shutdown(ctx context.Context) error
}

// SDK bundles the three provider roots Build assembles plus an aggregate
// Shutdown that closes every constructed Closeable in reverse order.
type SDK struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider

	closeables []Closeable
}

// Shutdown tears down every provider this SDK owns, in reverse
// construction order, accumulating (not short-circuiting on) errors via
// multierr so one provider's failure never hides another's.
func (s *SDK) Shutdown(ctx context.Context) error {
	var err error
	for i := len(s.closeables) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closeables[i].Shutdown(ctx))
	}
	return err
}

// BuildOptions configures Build.
type BuildOptions struct {
	// Registry supplies the SPI providers to resolve names against;
	// DefaultRegistry is used if nil.
	Registry *Registry
	// Layers are merged, in order, into the Properties every provider and
	// customizer sees; a later layer overrides an earlier one.
	Layers []map[string]any
	// EnvPrefix, if non-empty, loads OTEL_-style environment variables
	// after all Layers, so an environment value overrides the same key in
	// every layer. Nothing is merged after the environment.
	EnvPrefix string
}

// Build runs the deterministic SDK assembly sequence of spec.md §4.5:
// resource detection, then sampler, span pipeline, metric
// pipeline, log pipeline, each wrapped so that any step's failure
// triggers reverse-order cleanup of everything already constructed.
func Build(ctx context.Context, opts BuildOptions) (*SDK, error) {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry
	}

	props, err := NewProperties(opts.Layers...)
	if err != nil {
		return nil, newConfigError("", "failed to merge configuration layers", err)
	}
	if opts.EnvPrefix != "" {
		if err := props.LoadEnv(opts.EnvPrefix); err != nil {
			return nil, newConfigError("", "failed to load environment configuration", err)
		}
	}

	customizers := NewCustomizers()
	for _, p := range registry.orderedCustomizerProviders() {
		p.Customize(customizers)
	}

	if props.Bool("otel.sdk.disabled", false) {
		return buildDisabledSDK(), nil
	}

	sdk := &SDK{}

	res, err := buildResource(ctx, registry, props, customizers)
	if err != nil {
		return nil, err
	}

	sampler, err := resolveSampler(registry, props, customizers)
	if err != nil {
		_ = sdk.Shutdown(ctx)
		return nil, err
	}

	tp, err := buildTracerProvider(registry, props, customizers, res, sampler)
	if err != nil {
		_ = sdk.Shutdown(ctx)
		return nil, err
	}
	sdk.TracerProvider = tp
	sdk.closeables = append(sdk.closeables, shutdownFunc(tp.Shutdown))

	mp, err := buildMeterProvider(registry, props, customizers, res)
	if err != nil {
		_ = sdk.Shutdown(ctx)
		return nil, err
	}
	sdk.MeterProvider = mp
	sdk.closeables = append(sdk.closeables, shutdownFunc(mp.Shutdown))

	lp, err := buildLoggerProvider(registry, props, customizers, res)
	if err != nil {
		_ = sdk.Shutdown(ctx)
		return nil, err
	}
	sdk.LoggerProvider = lp
	sdk.closeables = append(sdk.closeables, shutdownFunc(lp.Shutdown))

	return sdk, nil
}

// buildDisabledSDK returns an SDK wired entirely to noop implementations,
// the "otel.sdk.disabled=true" escape hatch of spec.md §4.5.
func buildDisabledSDK() *SDK {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample{}))
	mp := sdkmetric.NewMeterProvider()
	lp := sdklog.NewLoggerProvider()
	return &SDK{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		closeables: []Closeable{
			shutdownFunc(tp.Shutdown),
			shutdownFunc(mp.Shutdown),
			shutdownFunc(lp.Shutdown),
		},
	}
}

type shutdownFunc func(context.Context) error

func (f shutdownFunc) Shutdown(ctx context.Context) error { return f(ctx) }

// buildResource runs every registered ResourceProvider and merges the
// results, then applies the Resource customizer chain (spec.md §4.5
// step 1).
func buildResource(ctx context.Context, registry *Registry, props *Properties, customizers *Customizers) (resource.Resource, error) {
	res := resource.Empty
	for _, rp := range registry.resourceProviders {
		contributed, err := rp.Create(ctx, props)
		if err != nil {
			return resource.Resource{}, newConfigError("otel.resource.attributes", fmt.Sprintf("resource provider %q failed", rp.Name()), err)
		}
		res = resource.Merge(res, contributed)
	}
	if customized := customizers.Resource.Apply(any(res), props); customized != nil {
		if r, ok := customized.(resource.Resource); ok {
			res = r
		}
	}
	return res, nil
}

func resolveSampler(registry *Registry, props *Properties, customizers *Customizers) (sdktrace.Sampler, error) {
	name := props.String("otel.traces.sampler", "always_on")
	provider, ok := registry.samplers[name]
	if !ok {
		return nil, newConfigError("otel.traces.sampler", fmt.Sprintf("unrecognized sampler %q", name), nil)
	}
	sampler, err := provider.Create(props)
	if err != nil {
		return nil, newConfigError("otel.traces.sampler", fmt.Sprintf("sampler %q failed to build", name), err)
	}
	if customized := customizers.Sampler.Apply(any(sampler), props); customized != nil {
		if s, ok := customized.(sdktrace.Sampler); ok {
			sampler = s
		}
	}
	return sampler, nil
}

func buildTracerProvider(registry *Registry, props *Properties, customizers *Customizers, res resource.Resource, sampler sdktrace.Sampler) (*sdktrace.TracerProvider, error) {
	exporterName := props.String("otel.traces.exporter", "none")
	provider, ok := registry.spanExporters[exporterName]
	if !ok {
		return nil, newConfigError("otel.traces.exporter", fmt.Sprintf("unrecognized span exporter %q", exporterName), nil)
	}
	exporter, err := provider.Create(props)
	if err != nil {
		return nil, newConfigError("otel.traces.exporter", fmt.Sprintf("span exporter %q failed to build", exporterName), err)
	}
	if customized := customizers.SpanExporter.Apply(any(exporter), props); customized != nil {
		if e, ok := customized.(sdktrace.SpanExporter); ok {
			exporter = e
		}
	}

	var processor sdktrace.SpanProcessor = sdktrace.NewBatchSpanProcessor(exporter)
	if customized := customizers.SpanProcessor.Apply(any(processor), props); customized != nil {
		if p, ok := customized.(sdktrace.SpanProcessor); ok {
			processor = p
		}
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithSpanProcessor(processor),
	), nil
}

func buildMeterProvider(registry *Registry, props *Properties, customizers *Customizers, res resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporterName := props.String("otel.metrics.exporter", "none")
	exporterProvider, ok := registry.metricExporters[exporterName]
	if !ok {
		return nil, newConfigError("otel.metrics.exporter", fmt.Sprintf("unrecognized metric exporter %q", exporterName), nil)
	}
	exporter, err := exporterProvider.Create(props)
	if err != nil {
		return nil, newConfigError("otel.metrics.exporter", fmt.Sprintf("metric exporter %q failed to build", exporterName), err)
	}
	if customized := customizers.MetricExporter.Apply(any(exporter), props); customized != nil {
		if e, ok := customized.(sdkmetric.MetricExporter); ok {
			exporter = e
		}
	}

	readerName := props.String("otel.metrics.reader", "periodic")
	readerProvider, ok := registry.metricReaders[readerName]
	if !ok {
		_ = exporter.Shutdown(context.Background())
		return nil, newConfigError("otel.metrics.reader", fmt.Sprintf("unrecognized metric reader %q", readerName), nil)
	}
	reader, err := readerProvider.Create(props, exporter)
	if err != nil {
		_ = exporter.Shutdown(context.Background())
		return nil, newConfigError("otel.metrics.reader", fmt.Sprintf("metric reader %q failed to build", readerName), err)
	}
	if customized := customizers.MetricReader.Apply(any(reader), props); customized != nil {
		if r, ok := customized.(sdkmetric.Reader); ok {
			reader = r
		}
	}

	cardinalityCap := props.Int("otel.metric.cardinality.limit", 0)
	opts := []sdkmetric.MeterProviderOption{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	}
	if cardinalityCap > 0 {
		opts = append(opts, sdkmetric.WithCardinalityLimit(cardinalityCap))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// buildLoggerProvider resolves the named log exporter exactly like the
// trace and metric pipelines, the "Build LoggerProvider likewise" step
// SPEC_FULL.md §3 adds on top of spec.md's distilled sequence.
func buildLoggerProvider(registry *Registry, props *Properties, customizers *Customizers, res resource.Resource) (*sdklog.LoggerProvider, error) {
	exporterName := props.String("otel.logs.exporter", "none")
	provider, ok := registry.logExporters[exporterName]
	if !ok {
		return nil, newConfigError("otel.logs.exporter", fmt.Sprintf("unrecognized log record exporter %q", exporterName), nil)
	}
	exporter, err := provider.Create(props)
	if err != nil {
		return nil, newConfigError("otel.logs.exporter", fmt.Sprintf("log record exporter %q failed to build", exporterName), err)
	}
	if customized := customizers.LogExporter.Apply(any(exporter), props); customized != nil {
		if e, ok := customized.(sdklog.LogRecordExporter); ok {
			exporter = e
		}
	}

	processor := sdklog.NewBatchLogRecordProcessor(exporter)
	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithLogRecordProcessor(processor),
	), nil
}

package autoconfig

import (
	"context"

	"github.com/open-telemetry/sdk-core/resource"
	"github.com/open-telemetry/sdk-core/sdklog"
	"github.com/open-telemetry/sdk-core/sdkmetric"
	"github.com/open-telemetry/sdk-core/sdktrace"
)

// The providers below are DefaultRegistry's out-of-the-box offering: a
// "none" exporter for every signal (so an unconfigured SDK is inert rather
// than erroring) and the always-on/always-off samplers already defined in
// sdktrace. A real deployment registers OTLP/console/etc. providers by
// importing a package whose init() calls Register* against DefaultRegistry
// or a caller-supplied Registry — this module ships none of those
// transports itself (spec.md's Non-goals exclude concrete exporters).

type noneSpanExporterProvider struct{}

func (noneSpanExporterProvider) Name() string { return "none" }
func (noneSpanExporterProvider) Create(*Properties) (sdktrace.SpanExporter, error) {
	return sdktrace.NewNoopExporter(), nil
}

type noneMetricExporterProvider struct{}

func (noneMetricExporterProvider) Name() string { return "none" }
func (noneMetricExporterProvider) Create(*Properties) (sdkmetric.MetricExporter, error) {
	return sdkmetric.NewNoopExporter(), nil
}

type noneLogRecordExporterProvider struct{}

func (noneLogRecordExporterProvider) Name() string { return "none" }
func (noneLogRecordExporterProvider) Create(*Properties) (sdklog.LogRecordExporter, error) {
	return sdklog.NewNoopExporter(), nil
}

// periodicMetricReaderProvider wraps any configured metric exporter in a
// PeriodicReader, the only reader implementation this module ships
// (spec.md §4.3's "pull" exporters are a Non-goal).
type periodicMetricReaderProvider struct{}

func (periodicMetricReaderProvider) Name() string { return "periodic" }
func (periodicMetricReaderProvider) Create(props *Properties, exporter sdkmetric.MetricExporter) (sdkmetric.Reader, error) {
	interval := props.Duration("otel.metric.export.interval", 0)
	timeout := props.Duration("otel.metric.export.timeout", 0)
	var opts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		opts = append(opts, sdkmetric.WithInterval(interval))
	}
	if timeout > 0 {
		opts = append(opts, sdkmetric.WithTimeout(timeout))
	}
	return sdkmetric.NewPeriodicReader(exporter, opts...), nil
}

type alwaysOnSamplerProvider struct{}

func (alwaysOnSamplerProvider) Name() string { return "always_on" }
func (alwaysOnSamplerProvider) Create(*Properties) (sdktrace.Sampler, error) {
	return sdktrace.AlwaysSample{}, nil
}

type alwaysOffSamplerProvider struct{}

func (alwaysOffSamplerProvider) Name() string { return "always_off" }
func (alwaysOffSamplerProvider) Create(*Properties) (sdktrace.Sampler, error) {
	return sdktrace.NeverSample{}, nil
}

// environmentResourceProvider folds the OTEL_SERVICE_NAME /
// OTEL_RESOURCE_ATTRIBUTES properties into the built Resource, the one
// resource detector spec.md §4.5 requires every implementation to carry
// even though richer detectors (cloud, process, host) are a Non-goal.
type environmentResourceProvider struct{}

func (environmentResourceProvider) Name() string { return "environment" }
func (environmentResourceProvider) Create(_ context.Context, props *Properties) (resource.Resource, error) {
	kvs := resourceAttributesFromProperty(props.String("otel.resource.attributes", ""))
	if name := props.String("otel.service.name", ""); name != "" {
		kvs = append(kvs, serviceNameAttribute(name))
	}
	return resource.NewSchemaless(kvs...), nil
}

func init() {
	DefaultRegistry.RegisterSpanExporter(noneSpanExporterProvider{})
	DefaultRegistry.RegisterMetricExporter(noneMetricExporterProvider{})
	DefaultRegistry.RegisterLogRecordExporter(noneLogRecordExporterProvider{})
	DefaultRegistry.RegisterMetricReader(periodicMetricReaderProvider{})
	DefaultRegistry.RegisterSampler(alwaysOnSamplerProvider{})
	DefaultRegistry.RegisterSampler(alwaysOffSamplerProvider{})
	DefaultRegistry.RegisterResourceProvider(environmentResourceProvider{})
}

package autoconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWithNoConfigurationProducesInertDefaults(t *testing.T) {
	sdk, err := Build(context.Background(), BuildOptions{Registry: NewTestRegistry()})
	require.NoError(t, err)
	defer sdk.Shutdown(context.Background())

	require.NotNil(t, sdk.TracerProvider)
	require.NotNil(t, sdk.MeterProvider)
	require.NotNil(t, sdk.LoggerProvider)
}

func TestBuildDisabledSDKSkipsProviderResolution(t *testing.T) {
	sdk, err := Build(context.Background(), BuildOptions{
		Registry: NewTestRegistry(),
		Layers:   []map[string]any{{"otel.sdk.disabled": true}},
	})
	require.NoError(t, err)
	defer sdk.Shutdown(context.Background())

	require.NotNil(t, sdk.TracerProvider)
	require.NotNil(t, sdk.MeterProvider)
}

func TestBuildReturnsConfigurationExceptionForUnknownSampler(t *testing.T) {
	_, err := Build(context.Background(), BuildOptions{
		Registry: NewTestRegistry(),
		Layers:   []map[string]any{{"otel.traces.sampler": "nonexistent"}},
	})
	require.Error(t, err)

	var cfgErr *ConfigurationException
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "otel.traces.sampler", cfgErr.Property)
}

func TestBuildRunsResourceCustomizerChain(t *testing.T) {
	registry := NewTestRegistry()
	var ran bool
	registry.RegisterCustomizerProvider(resourceOverrideCustomizer{ran: &ran})

	sdk, err := Build(context.Background(), BuildOptions{Registry: registry})
	require.NoError(t, err)
	defer sdk.Shutdown(context.Background())

	require.NotNil(t, sdk.TracerProvider)
	assert.True(t, ran, "resource customizer chain did not run")
}

type resourceOverrideCustomizer struct{ ran *bool }

func (resourceOverrideCustomizer) Order() int { return 0 }
func (r resourceOverrideCustomizer) Customize(c *Customizers) {
	c.Resource.Add(func(current any, _ *Properties) any {
		*r.ran = true
		return current
	})
}

// NewTestRegistry returns a Registry seeded with the same built-in
// providers as DefaultRegistry, isolated per test so registrations in one
// test can't leak into another.
func NewTestRegistry() *Registry {
	r := NewRegistry()
	r.RegisterSpanExporter(noneSpanExporterProvider{})
	r.RegisterMetricExporter(noneMetricExporterProvider{})
	r.RegisterLogRecordExporter(noneLogRecordExporterProvider{})
	r.RegisterMetricReader(periodicMetricReaderProvider{})
	r.RegisterSampler(alwaysOnSamplerProvider{})
	r.RegisterSampler(alwaysOffSamplerProvider{})
	r.RegisterResourceProvider(environmentResourceProvider{})
	return r
}

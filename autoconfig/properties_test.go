package autoconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertiesLaterLayersOverrideEarlierOnes(t *testing.T) {
	props, err := NewProperties(
		map[string]any{"otel.traces.sampler": "always_on", "otel.service.name": "defaults"},
		map[string]any{"otel.service.name": "from-file"},
	)
	require.NoError(t, err)

	assert.Equal(t, "always_on", props.String("otel.traces.sampler", ""))
	assert.Equal(t, "from-file", props.String("otel.service.name", ""))
}

func TestLoadEnvOverridesFileLayer(t *testing.T) {
	props, err := NewProperties(map[string]any{"otel.service.name": "from-file"})
	require.NoError(t, err)

	t.Setenv("OTEL_SERVICE_NAME", "from-env")
	require.NoError(t, props.LoadEnv("OTEL_"))

	assert.Equal(t, "from-env", props.String("otel.service.name", ""))
}

func TestLoadJSONMergesOntoExistingLayers(t *testing.T) {
	props, err := NewProperties(map[string]any{"otel.traces.sampler": "always_on"})
	require.NoError(t, err)

	require.NoError(t, props.LoadJSON([]byte(`{"otel":{"metrics":{"exporter":"none"}}}`)))

	assert.Equal(t, "always_on", props.String("otel.traces.sampler", ""))
	assert.Equal(t, "none", props.String("otel.metrics.exporter", ""))
}

func TestMissingKeyFallsBackToDefault(t *testing.T) {
	props, err := NewProperties()
	require.NoError(t, err)

	assert.Equal(t, "fallback", props.String("unset.key", "fallback"))
	assert.True(t, props.Bool("unset.flag", true))
	assert.Equal(t, 42, props.Int("unset.int", 42))
	assert.Equal(t, 5*time.Second, props.Duration("unset.duration", 5*time.Second))
}

func TestDurationParsesPlainMillisecondInts(t *testing.T) {
	props, err := NewProperties(map[string]any{"otel.metric.export.interval": "5000"})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, props.Duration("otel.metric.export.interval", time.Minute))
}

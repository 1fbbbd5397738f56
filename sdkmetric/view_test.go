package sdkmetric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRenamesMatchingInstrument(t *testing.T) {
	boundaries := []float64{1, 2, 3}
	reg := NewViewRegistry(defaultCardinalityLimit, View{
		Selector:    InstrumentSelector{Name: "http.server.*"},
		Name:        "http_latency",
		Aggregation: &Aggregation{Kind: AggregationExplicitBucketHistogram, Boundaries: boundaries},
	})
	d := InstrumentDescriptor{Name: "http.server.duration", Kind: KindHistogram}
	streams := reg.Resolve(d, AggregationSum)
	require.Len(t, streams, 1)
	assert.Equal(t, "http_latency", streams[0].descriptor.Name)
	assert.Equal(t, boundaries, streams[0].aggregation.Boundaries)
}

func TestNoMatchingViewProducesDefaultStream(t *testing.T) {
	reg := NewViewRegistry(defaultCardinalityLimit)
	d := InstrumentDescriptor{Name: "unrelated", Kind: KindCounter}
	streams := reg.Resolve(d, AggregationSum)
	require.Len(t, streams, 1)
	assert.Equal(t, "unrelated", streams[0].descriptor.Name)
	assert.Equal(t, AggregationSum, streams[0].aggregation.Kind)
}

func TestInstrumentSelectorNameMatchIsCaseInsensitive(t *testing.T) {
	sel := InstrumentSelector{Name: "MyCounter"}
	assert.True(t, sel.matches(InstrumentDescriptor{Name: "mycounter"}))
	assert.False(t, sel.matches(InstrumentDescriptor{Name: "other"}))
}

package autoconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomizerChainAppliesInRegistrationOrder(t *testing.T) {
	var chain CustomizerChain[int]
	chain.Add(func(current int, _ *Properties) int { return current + 1 })
	chain.Add(func(current int, _ *Properties) int { return current * 2 })

	props, err := NewProperties()
	require.NoError(t, err)

	// (0+1)*2 = 2; reversing the registration order would give (0*2)+1 = 1.
	assert.Equal(t, 2, chain.Apply(0, props))
}

func TestEmptyCustomizerChainReturnsBaseUnchanged(t *testing.T) {
	var chain CustomizerChain[string]
	props, err := NewProperties()
	require.NoError(t, err)

	assert.Equal(t, "unchanged", chain.Apply("unchanged", props))
}

func TestRegistryOrdersCustomizerProvidersByOrder(t *testing.T) {
	registry := NewRegistry()
	var seen []int
	registry.RegisterCustomizerProvider(orderedProvider{order: 10, fn: func() { seen = append(seen, 10) }})
	registry.RegisterCustomizerProvider(orderedProvider{order: -5, fn: func() { seen = append(seen, -5) }})
	registry.RegisterCustomizerProvider(orderedProvider{order: 0, fn: func() { seen = append(seen, 0) }})

	for _, p := range registry.orderedCustomizerProviders() {
		p.Customize(nil)
	}

	assert.Equal(t, []int{-5, 0, 10}, seen)
}

type orderedProvider struct {
	order int
	fn    func()
}

func (p orderedProvider) Order() int               { return p.order }
func (p orderedProvider) Customize(*Customizers) { p.fn() }

package sdkmetric

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExporter struct {
	mu       sync.Mutex
	exports  int32
	shutdown int32
}

func (e *countingExporter) Export(context.Context, ResourceMetrics) error {
	atomic.AddInt32(&e.exports, 1)
	return nil
}
func (e *countingExporter) Temporality(InstrumentKind) AggregationTemporality {
	return CumulativeTemporality
}
func (e *countingExporter) DefaultAggregation(kind InstrumentKind) AggregationKind {
	return DefaultAggregation(kind, Advice{}, nil).Kind
}
func (e *countingExporter) ForceFlush(context.Context) error { return nil }
func (e *countingExporter) Shutdown(context.Context) error {
	atomic.AddInt32(&e.shutdown, 1)
	return nil
}

func TestPeriodicReaderExportsOnInterval(t *testing.T) {
	exp := &countingExporter{}
	rd := NewPeriodicReader(exp, WithInterval(10*time.Millisecond))
	NewMeterProvider(WithReader(rd))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&exp.exports) >= 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, rd.Shutdown(context.Background()))
}

func TestPeriodicReaderForceFlushRunsImmediately(t *testing.T) {
	exp := &countingExporter{}
	rd := NewPeriodicReader(exp, WithInterval(time.Hour))
	NewMeterProvider(WithReader(rd))

	require.NoError(t, rd.ForceFlush(context.Background()))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&exp.exports), int32(1))
	require.NoError(t, rd.Shutdown(context.Background()))
}

func TestPeriodicReaderShutdownIsIdempotentAndStopsExports(t *testing.T) {
	exp := &countingExporter{}
	rd := NewPeriodicReader(exp, WithInterval(time.Hour))
	NewMeterProvider(WithReader(rd))

	require.NoError(t, rd.Shutdown(context.Background()))
	require.NoError(t, rd.Shutdown(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&exp.shutdown))
	// only the first Shutdown's final flush exported; the second did not
	assert.Equal(t, int32(1), atomic.LoadInt32(&exp.exports))
}

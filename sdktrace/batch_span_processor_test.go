package sdktrace

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coretrace "github.com/open-telemetry/sdk-core/trace"
)

type recordingExporter struct {
	mu       sync.Mutex
	batches  [][]ReadOnlySpan
	shutdown int32
}

func (e *recordingExporter) ExportSpans(_ context.Context, spans []ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]ReadOnlySpan, len(spans))
	copy(cp, spans)
	e.batches = append(e.batches, cp)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error {
	atomic.AddInt32(&e.shutdown, 1)
	return nil
}

func (e *recordingExporter) total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, b := range e.batches {
		n += len(b)
	}
	return n
}

func (e *recordingExporter) maxBatch() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := 0
	for _, b := range e.batches {
		if len(b) > m {
			m = len(b)
		}
	}
	return m
}

func sampledSnapshot() *spanSnapshot {
	return &spanSnapshot{
		sc: coretrace.NewSpanContext(coretrace.SpanContextConfig{
			TraceID:    coretrace.TraceID{1},
			SpanID:     coretrace.SpanID{1},
			TraceFlags: coretrace.FlagsSampled,
		}),
	}
}

func unsampledSnapshot() *spanSnapshot {
	return &spanSnapshot{
		sc: coretrace.NewSpanContext(coretrace.SpanContextConfig{
			TraceID: coretrace.TraceID{1},
			SpanID:  coretrace.SpanID{1},
		}),
	}
}

func TestOnEndDropsUnsampledSpans(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(time.Hour))
	defer bsp.Shutdown(context.Background())

	bsp.OnEnd(unsampledSnapshot())
	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 0, exp.total())
}

// blockingExporter blocks the first ExportSpans call until release is
// closed, letting a test stuff the queue past its bound before the worker
// can drain it.
type blockingExporter struct {
	recordingExporter
	release chan struct{}
	once    sync.Once
}

func (e *blockingExporter) ExportSpans(ctx context.Context, spans []ReadOnlySpan) error {
	e.once.Do(func() { <-e.release })
	return e.recordingExporter.ExportSpans(ctx, spans)
}

func TestQueueBoundsDropExcess(t *testing.T) {
	exp := &blockingExporter{release: make(chan struct{})}
	// scheduleDelay is tiny so the worker soon exports the one span offered
	// below (it never exports an empty batch) and blocks in that export,
	// pinning the queue while we offer past its bound.
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(time.Millisecond), WithMaxQueueSize(10), WithMaxExportBatchSize(10))

	bsp.OnEnd(sampledSnapshot())
	time.Sleep(20 * time.Millisecond) // let the worker reach its first export and block

	for i := 0; i < 100; i++ {
		bsp.OnEnd(sampledSnapshot())
	}
	retained := bsp.queueLen()
	close(exp.release)

	require.NoError(t, bsp.Shutdown(context.Background()))
	assert.Equal(t, 10, retained)
	assert.LessOrEqual(t, exp.total(), 100)
}

func TestForceFlushObservesAllEndedSpans(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(time.Hour), WithMaxExportBatchSize(1000))
	defer bsp.Shutdown(context.Background())

	for i := 0; i < 50; i++ {
		bsp.OnEnd(sampledSnapshot())
	}
	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 50, exp.total())
}

func TestBatchSizingNeverExceedsMax(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(time.Hour), WithMaxExportBatchSize(16), WithMaxQueueSize(1000))
	defer bsp.Shutdown(context.Background())

	for i := 0; i < 200; i++ {
		bsp.OnEnd(sampledSnapshot())
	}
	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.LessOrEqual(t, exp.maxBatch(), 16)
	assert.Equal(t, 200, exp.total())
}

func TestTimeTriggeredExport(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(20*time.Millisecond), WithMaxExportBatchSize(1000))
	defer bsp.Shutdown(context.Background())

	bsp.OnEnd(sampledSnapshot())

	require.Eventually(t, func() bool {
		return exp.total() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNoExportWithoutSpans(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(30*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, bsp.Shutdown(context.Background()))
	assert.Equal(t, 0, exp.total())
}

func TestShutdownIsIdempotent(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithScheduleDelay(time.Hour))

	require.NoError(t, bsp.Shutdown(context.Background()))
	require.NoError(t, bsp.Shutdown(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&exp.shutdown))
}

package sdklog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExporter struct {
	mu       sync.Mutex
	batches  [][]Record
	shutdown int32
}

func (e *recordingExporter) Export(_ context.Context, records []Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]Record, len(records))
	copy(cp, records)
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

func testRecord() Record {
	return Record{Timestamp: time.Now(), Severity: SeverityInfo, Body: "hello"}
}

// blockingExporter blocks the first Export call until release is closed,
// letting a test stuff the queue past its bound before the worker can
// drain it.
type blockingExporter struct {
	recordingExporter
	release chan struct{}
	once    sync.Once
}

func (e *blockingExporter) Export(ctx context.Context, records []Record) error {
	e.once.Do(func() { <-e.release })
	return e.recordingExporter.Export(ctx, records)
}

func TestQueueBoundsDropExcess(t *testing.T) {
	exp := &blockingExporter{release: make(chan struct{})}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(time.Millisecond), WithMaxQueueSize(10), WithMaxExportBatchSize(10))

	// one record gives the worker a non-empty batch: it never exports an
	// empty one, so without it the worker would not block
	blp.OnEmit(testRecord())
	time.Sleep(20 * time.Millisecond) // let the worker reach its first export and block

	for i := 0; i < 100; i++ {
		blp.OnEmit(testRecord())
	}
	retained := blp.queueLen()
	close(exp.release)

	require.NoError(t, blp.Shutdown(context.Background()))
	assert.Equal(t, 10, retained)
	assert.LessOrEqual(t, exp.total(), 100)
}

func TestForceFlushObservesAllEmittedRecords(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(time.Hour), WithMaxExportBatchSize(1000))
	defer blp.Shutdown(context.Background())

	for i := 0; i < 50; i++ {
		blp.OnEmit(testRecord())
	}
	require.NoError(t, blp.ForceFlush(context.Background()))
	assert.Equal(t, 50, exp.total())
}

func TestBatchSizingNeverExceedsMax(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(time.Hour), WithMaxExportBatchSize(16), WithMaxQueueSize(1000))
	defer blp.Shutdown(context.Background())

	for i := 0; i < 200; i++ {
		blp.OnEmit(testRecord())
	}
	require.NoError(t, blp.ForceFlush(context.Background()))
	assert.LessOrEqual(t, exp.maxBatch(), 16)
	assert.Equal(t, 200, exp.total())
}

func TestTimeTriggeredExport(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(20*time.Millisecond), WithMaxExportBatchSize(1000))
	defer blp.Shutdown(context.Background())

	blp.OnEmit(testRecord())

	require.Eventually(t, func() bool {
		return exp.total() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNoExportWithoutRecords(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(30*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, blp.Shutdown(context.Background()))
	assert.Equal(t, 0, exp.total())
}

func TestShutdownIsIdempotent(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp, WithScheduleDelay(time.Hour))

	require.NoError(t, blp.Shutdown(context.Background()))
	require.NoError(t, blp.Shutdown(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&exp.shutdown))
}

package sdklog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/metric"
)

// LogRecordProcessor receives every Record emitted by a Logger, in
// registration order (SPEC_FULL.md §3, mirroring sdktrace.SpanProcessor).
type LogRecordProcessor interface {
	OnEmit(r Record)
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Defaults mirror sdktrace's BatchSpanProcessor defaults (spec.md §4.1):
// a log pipeline under equivalent load should not behave differently
// just because the signal is logs instead of spans.
const (
	DefaultScheduleDelay       = 5 * time.Second
	DefaultMaxQueueSize        = 2048
	DefaultMaxExportBatchSize  = 512
	DefaultExportTimeout       = 30 * time.Second
)

// BatchLogRecordProcessorOption configures a BatchLogRecordProcessor.
type BatchLogRecordProcessorOption func(*batchLogRecordProcessorConfig)

type batchLogRecordProcessorConfig struct {
	scheduleDelay      time.Duration
	maxQueueSize       int
	maxExportBatchSize int
	exportTimeout      time.Duration
	logger             *zap.Logger
	meterProvider      metric.MeterProvider
	maxFlushWaiters    int64
}

func WithScheduleDelay(d time.Duration) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.scheduleDelay = d }
}
func WithMaxQueueSize(n int) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.maxQueueSize = n }
}
func WithMaxExportBatchSize(n int) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.maxExportBatchSize = n }
}
func WithExportTimeout(d time.Duration) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.exportTimeout = d }
}
func WithLogger(l *zap.Logger) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.logger = l }
}
func WithMeterProvider(mp metric.MeterProvider) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.meterProvider = mp }
}

// WithMaxFlushWaiters bounds the number of goroutines allowed to wait
// concurrently on ForceFlush before it starts returning errors immediately,
// the same concurrency guard BatchSpanProcessor uses (DESIGN.md).
func WithMaxFlushWaiters(n int64) BatchLogRecordProcessorOption {
	return func(c *batchLogRecordProcessorConfig) { c.maxFlushWaiters = n }
}

type processorState int32

const (
	stateRunning processorState = iota
	stateShuttingDown
	stateTerminated
)

type flushRequest struct {
	done chan error
}

// BatchLogRecordProcessor is a bounded-queue, single-worker log exporter
// with time- and size-triggered batching, flush and shutdown semantics. It
// is sdktrace.BatchSpanProcessor's algorithm (spec.md §4.1, component C7)
// generalized from ReadOnlySpan to Record: the queue, wakeup-coalescing,
// and flush/shutdown state machine are unchanged, only the exported value
// type differs.
type BatchLogRecordProcessor struct {
	exporter LogRecordExporter
	cfg      batchLogRecordProcessorConfig

	queueMu sync.Mutex
	queue   []Record

	// wake is a single-slot coalesced wakeup signal: producers send a
	// non-blocking signal only when queue depth reaches recordsNeeded.
	wake          chan struct{}
	recordsNeeded int

	flushCh chan flushRequest
	sem     *semaphore.Weighted

	state        atomic.Int32
	shutdownMu   sync.Mutex
	shutdownRes  error
	shutdownDone bool

	stopWorker chan struct{}
	workerDone chan struct{}

	droppedCounter  metric.Int64Counter
	exportedCounter metric.Int64Counter

	logger *zap.Logger
}

// NewBatchLogRecordProcessor returns a BatchLogRecordProcessor exporting to
// exporter, started immediately.
func NewBatchLogRecordProcessor(exporter LogRecordExporter, opts ...BatchLogRecordProcessorOption) *BatchLogRecordProcessor {
	cfg := batchLogRecordProcessorConfig{
		scheduleDelay:      DefaultScheduleDelay,
		maxQueueSize:       DefaultMaxQueueSize,
		maxExportBatchSize: DefaultMaxExportBatchSize,
		exportTimeout:      DefaultExportTimeout,
		logger:             zap.NewNop(),
		meterProvider:      metric.NewNoopMeterProvider(),
		maxFlushWaiters:    100,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.maxExportBatchSize > cfg.maxQueueSize {
		cfg.maxExportBatchSize = cfg.maxQueueSize
	}

	blp := &BatchLogRecordProcessor{
		exporter:      exporter,
		cfg:           cfg,
		wake:          make(chan struct{}, 1),
		flushCh:       make(chan flushRequest),
		sem:           semaphore.NewWeighted(cfg.maxFlushWaiters),
		stopWorker:    make(chan struct{}),
		workerDone:    make(chan struct{}),
		logger:        cfg.logger,
		recordsNeeded: cfg.maxExportBatchSize,
	}

	meter := cfg.meterProvider.Meter("github.com/open-telemetry/sdk-core/sdklog")
	blp.droppedCounter, _ = meter.Int64Counter("processedLogRecords",
		metric.WithDescription("log records offered to the processor, labeled by whether they were dropped"))
	blp.exportedCounter = blp.droppedCounter
	_, _ = meter.Int64ObservableGauge("queueSize",
		metric.WithDescription("number of log records queued for export"))

	go blp.run()
	return blp
}

// OnEmit attempts a non-blocking enqueue of r, dropping it if the queue is
// at capacity (spec.md §8 items 2-3, generalized to logs).
func (blp *BatchLogRecordProcessor) OnEmit(r Record) {
	if blp.state.Load() != int32(stateRunning) {
		return
	}

	blp.queueMu.Lock()
	if len(blp.queue) >= blp.cfg.maxQueueSize {
		blp.queueMu.Unlock()
		blp.droppedCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("dropped", true)))
		return
	}
	blp.queue = append(blp.queue, r)
	signal := len(blp.queue) >= blp.recordsNeeded
	blp.queueMu.Unlock()

	if signal {
		select {
		case blp.wake <- struct{}{}:
		default:
		}
	}
}

// run is the single worker goroutine; identical in structure to
// BatchSpanProcessor.run, operating over Record batches instead of spans.
func (blp *BatchLogRecordProcessor) run() {
	defer close(blp.workerDone)

	nextExportTime := time.Now().Add(blp.cfg.scheduleDelay)
	var batch []Record

	for {
		select {
		case req := <-blp.flushCh:
			blp.drainAndExportAll(&batch)
			req.done <- nil
		case <-blp.stopWorker:
			blp.drainAndExportAll(&batch)
			return
		default:
		}

		batch = blp.fillBatch(batch)

		if len(batch) >= blp.cfg.maxExportBatchSize || !time.Now().Before(nextExportTime) {
			if len(batch) > 0 {
				blp.export(batch)
				batch = batch[:0]
			}
			nextExportTime = time.Now().Add(blp.cfg.scheduleDelay)
			continue
		}

		if blp.queueLen() == 0 {
			wait := time.Until(nextExportTime)
			if wait < 0 {
				wait = 0
			}
			blp.setRecordsNeeded(blp.cfg.maxExportBatchSize - len(batch))
			timer := time.NewTimer(wait)
			select {
			case <-blp.wake:
			case <-timer.C:
			case req := <-blp.flushCh:
				timer.Stop()
				blp.drainAndExportAll(&batch)
				req.done <- nil
				blp.setRecordsNeeded(1 << 30)
				continue
			case <-blp.stopWorker:
				timer.Stop()
				blp.drainAndExportAll(&batch)
				return
			}
			timer.Stop()
			blp.setRecordsNeeded(1 << 30)
		}
	}
}

func (blp *BatchLogRecordProcessor) setRecordsNeeded(n int) {
	blp.queueMu.Lock()
	blp.recordsNeeded = n
	blp.queueMu.Unlock()
}

func (blp *BatchLogRecordProcessor) queueLen() int {
	blp.queueMu.Lock()
	defer blp.queueMu.Unlock()
	return len(blp.queue)
}

func (blp *BatchLogRecordProcessor) fillBatch(batch []Record) []Record {
	room := blp.cfg.maxExportBatchSize - len(batch)
	if room <= 0 {
		return batch
	}
	blp.queueMu.Lock()
	n := room
	if n > len(blp.queue) {
		n = len(blp.queue)
	}
	if n > 0 {
		batch = append(batch, blp.queue[:n]...)
		blp.queue = append(blp.queue[:0], blp.queue[n:]...)
	}
	blp.queueMu.Unlock()
	return batch
}

func (blp *BatchLogRecordProcessor) drainAndExportAll(batch *[]Record) {
	if len(*batch) > 0 {
		blp.export(*batch)
		*batch = (*batch)[:0]
	}
	for {
		next := blp.fillBatch(nil)
		if len(next) == 0 {
			return
		}
		blp.export(next)
	}
}

func (blp *BatchLogRecordProcessor) export(batch []Record) {
	ctx, cancel := context.WithTimeout(context.Background(), blp.cfg.exportTimeout)
	defer cancel()

	cp := make([]Record, len(batch))
	copy(cp, batch)

	if err := blp.exporter.Export(ctx, cp); err != nil {
		blp.logger.Warn("log record export failed", zap.Error(err), zap.Int("batchSize", len(cp)))
		return
	}
	blp.exportedCounter.Add(context.Background(), int64(len(cp)), metric.WithAttributes(attribute.Bool("dropped", false)))
}

// ForceFlush blocks until every record handed to OnEmit before this call
// has been passed to the exporter.
func (blp *BatchLogRecordProcessor) ForceFlush(ctx context.Context) error {
	if !blp.sem.TryAcquire(1) {
		return errTooManyFlushWaiters
	}
	defer blp.sem.Release(1)

	if blp.state.Load() == int32(stateTerminated) {
		return nil
	}

	req := flushRequest{done: make(chan error, 1)}
	select {
	case blp.flushCh <- req:
	case <-blp.workerDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown flushes, then shuts down the exporter, exactly once. Calling it
// again returns the first call's cached result.
func (blp *BatchLogRecordProcessor) Shutdown(ctx context.Context) error {
	blp.shutdownMu.Lock()
	if blp.shutdownDone {
		res := blp.shutdownRes
		blp.shutdownMu.Unlock()
		return res
	}
	blp.shutdownDone = true
	blp.shutdownMu.Unlock()

	blp.state.Store(int32(stateShuttingDown))

	err := blp.ForceFlush(ctx)

	close(blp.stopWorker)
	select {
	case <-blp.workerDone:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	blp.state.Store(int32(stateTerminated))

	if shutErr := blp.exporter.Shutdown(ctx); shutErr != nil && err == nil {
		err = shutErr
	}

	blp.shutdownMu.Lock()
	blp.shutdownRes = err
	blp.shutdownMu.Unlock()
	return err
}

var errTooManyFlushWaiters = &flushBackpressureError{}

type flushBackpressureError struct{}

func (*flushBackpressureError) Error() string {
	return "sdklog: too many concurrent ForceFlush callers"
}

package sdktrace

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

// Defaults from spec.md §4.1.
const (
	DefaultScheduleDelay       = 5 * time.Second
	DefaultMaxQueueSize        = 2048
	DefaultMaxExportBatchSize  = 512
	DefaultExportTimeout       = 30 * time.Second
)

// BatchSpanProcessorOption configures a BatchSpanProcessor.
type BatchSpanProcessorOption func(*batchSpanProcessorConfig)

type batchSpanProcessorConfig struct {
	scheduleDelay      time.Duration
	maxQueueSize       int
	maxExportBatchSize int
	exportTimeout      time.Duration
	logger             *zap.Logger
	meterProvider      metric.MeterProvider
	maxFlushWaiters    int64
}

func WithScheduleDelay(d time.Duration) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.scheduleDelay = d }
}
func WithMaxQueueSize(n int) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.maxQueueSize = n }
}
func WithMaxExportBatchSize(n int) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.maxExportBatchSize = n }
}
func WithExportTimeout(d time.Duration) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.exportTimeout = d }
}
func WithLogger(l *zap.Logger) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.logger = l }
}
func WithMeterProvider(mp metric.MeterProvider) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.meterProvider = mp }
}
// WithMaxFlushWaiters bounds the number of goroutines allowed to wait
// concurrently on ForceFlush before it starts returning errors immediately,
// grounded on concurrentbatchprocessor's semaphore.Weighted concurrency
// guard (DESIGN.md).
func WithMaxFlushWaiters(n int64) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.maxFlushWaiters = n }
}

// processorState is the state machine named in spec.md §4.1.
type processorState int32

const (
	stateRunning processorState = iota
	stateShuttingDown
	stateTerminated
)

type flushRequest struct {
	done chan error
}

// BatchSpanProcessor is a bounded-queue, single-worker span exporter with
// time- and size-triggered batching, flush and shutdown semantics (spec.md
// §4.1, component C7). Grounded on the teacher's
// collector/processor/concurrentbatchprocessor worker-loop/timer-channel
// structure (DESIGN.md), generalized from "any signal" batching down to
// spans only and adapted to the spec's queue+wakeup-coalescing algorithm
// rather than the teacher's per-shard channel fan-out.
type BatchSpanProcessor struct {
	exporter SpanExporter
	cfg      batchSpanProcessorConfig

	queueMu sync.Mutex
	queue   []ReadOnlySpan

	// wake is a single-slot coalesced wakeup signal: producers send a
	// non-blocking signal only when queue depth reaches spansNeeded: this
	// is the "wakeup coalescing" rule of spec.md §4.1.
	wake chan struct{}
	// spansNeeded is read by producers under queueMu; it is set to
	// maxExportBatchSize-len(batch) before the worker sleeps and restored
	// to a value no producer can reach while the worker is awake.
	spansNeeded int

	flushCh chan flushRequest
	sem     *semaphore.Weighted

	state      atomic.Int32
	shutdownMu sync.Mutex
	shutdownRes error
	shutdownDone bool

	stopWorker chan struct{}
	workerDone chan struct{}

	droppedCounter metric.Int64Counter
	exportedCounter metric.Int64Counter

	logger *zap.Logger
}

// NewBatchSpanProcessor returns a BatchSpanProcessor exporting to exporter,
// started immediately.
func NewBatchSpanProcessor(exporter SpanExporter, opts ...BatchSpanProcessorOption) *BatchSpanProcessor {
	cfg := batchSpanProcessorConfig{
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

	bsp := &BatchSpanProcessor{
		exporter:    exporter,
		cfg:         cfg,
		wake:        make(chan struct{}, 1),
		flushCh:     make(chan flushRequest),
		sem:         semaphore.NewWeighted(cfg.maxFlushWaiters),
		stopWorker:  make(chan struct{}),
		workerDone:  make(chan struct{}),
		logger:      cfg.logger,
		spansNeeded: cfg.maxExportBatchSize,
	}

	meter := cfg.meterProvider.Meter("github.com/open-telemetry/sdk-core/sdktrace")
	bsp.droppedCounter, _ = meter.Int64Counter("processedSpans",
		metric.WithDescription("spans offered to the processor, labeled by whether they were dropped"))
	bsp.exportedCounter = bsp.droppedCounter
	_, _ = meter.Int64ObservableGauge("queueSize",
		metric.WithDescription("number of spans queued for export"))

	go bsp.run()
	return bsp
}

// OnEnd drops unsampled spans and otherwise attempts a non-blocking
// enqueue, matching the testable properties in spec.md §8 items 2-3.
func (bsp *BatchSpanProcessor) OnEnd(s ReadOnlySpan) {
	if !s.SpanContext().IsSampled() {
		return
	}
	if bsp.state.Load() != int32(stateRunning) {
		return
	}

	bsp.queueMu.Lock()
	if len(bsp.queue) >= bsp.cfg.maxQueueSize {
		bsp.queueMu.Unlock()
		bsp.droppedCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("dropped", true)))
		return
	}
	bsp.queue = append(bsp.queue, s)
	signal := len(bsp.queue) >= bsp.spansNeeded
	bsp.queueMu.Unlock()

	if signal {
		select {
		case bsp.wake <- struct{}{}:
		default:
		}
	}
}

// run is the single worker goroutine implementing the algorithm of
// spec.md §4.1.
func (bsp *BatchSpanProcessor) run() {
	defer close(bsp.workerDone)

	nextExportTime := time.Now().Add(bsp.cfg.scheduleDelay)
	var batch []ReadOnlySpan

	for {
		// Step 2: pending flush drains the entire queue first.
		select {
		case req := <-bsp.flushCh:
			bsp.drainAndExportAll(&batch)
			req.done <- nil
		case <-bsp.stopWorker:
			bsp.drainAndExportAll(&batch)
			return
		default:
		}

		// Step 3: drain up to maxExportBatchSize-len(batch) spans.
		batch = bsp.fillBatch(batch)

		// Step 4: size- or time-triggered export.
		if len(batch) >= bsp.cfg.maxExportBatchSize || !time.Now().Before(nextExportTime) {
			if len(batch) > 0 {
				bsp.export(batch)
				batch = batch[:0]
			}
			nextExportTime = time.Now().Add(bsp.cfg.scheduleDelay)
			continue
		}

		// Step 5: queue empty, wait bounded by the remaining schedule
		// delay for either a wakeup or the timeout.
		if bsp.queueLen() == 0 {
			wait := time.Until(nextExportTime)
			if wait < 0 {
				wait = 0
			}
			bsp.setSpansNeeded(bsp.cfg.maxExportBatchSize - len(batch))
			timer := time.NewTimer(wait)
			select {
			case <-bsp.wake:
			case <-timer.C:
			case req := <-bsp.flushCh:
				timer.Stop()
				bsp.drainAndExportAll(&batch)
				req.done <- nil
				bsp.setSpansNeeded(1 << 30)
				continue
			case <-bsp.stopWorker:
				timer.Stop()
				bsp.drainAndExportAll(&batch)
				return
			}
			timer.Stop()
			bsp.setSpansNeeded(1 << 30) // restore to "unreachable" per spec.md §4.1
		}
	}
}

func (bsp *BatchSpanProcessor) setSpansNeeded(n int) {
	bsp.queueMu.Lock()
	bsp.spansNeeded = n
	bsp.queueMu.Unlock()
}

func (bsp *BatchSpanProcessor) queueLen() int {
	bsp.queueMu.Lock()
	defer bsp.queueMu.Unlock()
	return len(bsp.queue)
}

// fillBatch drains up to maxExportBatchSize-len(batch) spans from the
// queue into batch and returns the (possibly reallocated) slice.
func (bsp *BatchSpanProcessor) fillBatch(batch []ReadOnlySpan) []ReadOnlySpan {
	room := bsp.cfg.maxExportBatchSize - len(batch)
	if room <= 0 {
		return batch
	}
	bsp.queueMu.Lock()
	n := room
	if n > len(bsp.queue) {
		n = len(bsp.queue)
	}
	if n > 0 {
		batch = append(batch, bsp.queue[:n]...)
		bsp.queue = append(bsp.queue[:0], bsp.queue[n:]...)
	}
	bsp.queueMu.Unlock()
	return batch
}

// drainAndExportAll empties the entire queue (not just one batch worth)
// into batches of <=maxExportBatchSize and exports each, per spec.md §4.1
// step 2 ("drain the entire queue into batches ... and export each").
func (bsp *BatchSpanProcessor) drainAndExportAll(batch *[]ReadOnlySpan) {
	if len(*batch) > 0 {
		bsp.export(*batch)
		*batch = (*batch)[:0]
	}
	for {
		next := bsp.fillBatch(nil)
		if len(next) == 0 {
			return
		}
		bsp.export(next)
	}
}

func (bsp *BatchSpanProcessor) export(batch []ReadOnlySpan) {
	ctx, cancel := context.WithTimeout(context.Background(), bsp.cfg.exportTimeout)
	defer cancel()

	cp := make([]ReadOnlySpan, len(batch))
	copy(cp, batch)

	if err := bsp.exporter.ExportSpans(ctx, cp); err != nil {
		bsp.logger.Warn("span export failed", zap.Error(err), zap.Int("batchSize", len(cp)))
		return
	}
	bsp.exportedCounter.Add(context.Background(), int64(len(cp)), metric.WithAttributes(attribute.Bool("dropped", false)))
}

// ForceFlush blocks until every span handed to OnEnd before this call has
// been passed to the exporter (spec.md §8 item 4).
func (bsp *BatchSpanProcessor) ForceFlush(ctx context.Context) error {
	if !bsp.sem.TryAcquire(1) {
		return errTooManyFlushWaiters
	}
	defer bsp.sem.Release(1)

	if bsp.state.Load() == int32(stateTerminated) {
		return nil
	}

	req := flushRequest{done: make(chan error, 1)}
	select {
	case bsp.flushCh <- req:
	case <-bsp.workerDone:
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
// again returns the first call's cached result (spec.md §8 item 14).
func (bsp *BatchSpanProcessor) Shutdown(ctx context.Context) error {
	bsp.shutdownMu.Lock()
	if bsp.shutdownDone {
		res := bsp.shutdownRes
		bsp.shutdownMu.Unlock()
		return res
	}
	bsp.shutdownDone = true
	bsp.shutdownMu.Unlock()

	bsp.state.Store(int32(stateShuttingDown))

	err := bsp.ForceFlush(ctx)

	close(bsp.stopWorker)
	select {
	case <-bsp.workerDone:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	bsp.state.Store(int32(stateTerminated))

	if shutErr := bsp.exporter.Shutdown(ctx); shutErr != nil && err == nil {
		err = shutErr
	}

	bsp.shutdownMu.Lock()
	bsp.shutdownRes = err
	bsp.shutdownMu.Unlock()
	return err
}

var errTooManyFlushWaiters = &flushBackpressureError{}

type flushBackpressureError struct{}

func (*flushBackpressureError) Error() string {
	return "sdktrace: too many concurrent ForceFlush callers"
}

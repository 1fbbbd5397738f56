package sdkmetric

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPeriodicInterval = 60 * time.Second
	defaultPeriodicTimeout  = 30 * time.Second
)

// PeriodicReaderOption configures a PeriodicReader.
type PeriodicReaderOption func(*periodicReaderConfig)

type periodicReaderConfig struct {
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func WithInterval(d time.Duration) PeriodicReaderOption {
	return func(c *periodicReaderConfig) { c.interval = d }
}
func WithTimeout(d time.Duration) PeriodicReaderOption {
	return func(c *periodicReaderConfig) { c.timeout = d }
}
func WithReaderLogger(l *zap.Logger) PeriodicReaderOption {
	return func(c *periodicReaderConfig) { c.logger = l }
}

// PeriodicReader drives collect-and-export on a fixed interval (spec.md
// §4.3, component C6). Its run loop is grounded on BatchSpanProcessor's
// worker (sdktrace/batch_span_processor.go): a single goroutine owns the
// ticker and the scheduled exports, and ForceFlush sends it a request over
// a channel. Shutdown runs its final collect-and-export on the caller's
// goroutine, then stops the loop.
type PeriodicReader struct {
	cfg      periodicReaderConfig
	exporter MetricExporter
	producer producer

	done      chan struct{}
	flushCh   chan flushRequest
	wg        sync.WaitGroup

	shutdownMu sync.Mutex
	isShutdown bool
}

// NewPeriodicReader builds a PeriodicReader exporting through exp every
// WithInterval (default 60s, spec.md §4.3).
func NewPeriodicReader(exp MetricExporter, opts ...PeriodicReaderOption) *PeriodicReader {
	cfg := periodicReaderConfig{
		interval: defaultPeriodicInterval,
		timeout:  defaultPeriodicTimeout,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	r := &PeriodicReader{
		cfg:      cfg,
		exporter: exp,
		done:     make(chan struct{}),
		flushCh:  make(chan flushRequest),
	}
	return r
}

func (r *PeriodicReader) registerProducer(p producer) {
	r.producer = p
	r.wg.Add(1)
	go r.run()
}

func (r *PeriodicReader) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.collectAndExport(context.Background())
		case req := <-r.flushCh:
			req.respCh <- r.collectAndExport(req.ctx)
		}
	}
}

func (r *PeriodicReader) collectAndExport(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()
	data, err := r.Collect(ctx)
	if err != nil {
		r.cfg.logger.Error("periodic reader collect failed", zap.Error(err))
		return err
	}
	if err := r.exporter.Export(ctx, data); err != nil {
		r.cfg.logger.Error("periodic reader export failed", zap.Error(err))
		return err
	}
	return nil
}

// Collect runs one collection pass without exporting it (used directly by
// pull-based readers and by tests).
func (r *PeriodicReader) Collect(ctx context.Context) (ResourceMetrics, error) {
	if r.producer == nil {
		return ResourceMetrics{}, nil
	}
	return r.producer.produce(ctx, r)
}

func (r *PeriodicReader) Temporality(kind InstrumentKind) AggregationTemporality {
	return r.exporter.Temporality(kind)
}

func (r *PeriodicReader) DefaultAggregation(kind InstrumentKind) AggregationKind {
	return r.exporter.DefaultAggregation(kind)
}

// ForceFlush asks the worker goroutine for one extra collect-and-export
// cycle and blocks until it completes; an in-flight scheduled export
// finishes first and is not merged with it.
func (r *PeriodicReader) ForceFlush(ctx context.Context) error {
	respCh := make(chan error, 1)
	select {
	case r.flushCh <- flushRequest{ctx: ctx, respCh: respCh}:
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-respCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *PeriodicReader) Shutdown(ctx context.Context) error {
	r.shutdownMu.Lock()
	defer r.shutdownMu.Unlock()
	if r.isShutdown {
		return nil
	}
	r.isShutdown = true
	_ = r.collectAndExport(ctx) // final flush, best-effort
	close(r.done)
	r.wg.Wait()
	return r.exporter.Shutdown(ctx)
}

func (r *PeriodicReader) String() string { return "periodic" }

type flushRequest struct {
	ctx    context.Context
	respCh chan error
}

package sdkmetric

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	apimetric "github.com/open-telemetry/sdk-core/metric"
	"github.com/open-telemetry/sdk-core/sdkmetric/internal/aggregate"
)

// Meter implements the metric.Meter API (spec.md §4.3, component C4):
// instrument registration with duplicate-identity detection (first
// registration wins, DESIGN.md's Open Question decision), and per-reader
// fan-out of every instrument's measurements through the view registry.
type Meter struct {
	scope instrumentation.Scope
	state *meterSharedState

	mu         sync.Mutex
	byIdentity map[string]InstrumentDescriptor
	storages   []readerStorage
	callbacks  []*registeredCallback
}

type readerStorage struct {
	readerIndex int
	storage     metricStorage
}

type registeredCallback struct {
	fn          apimetric.Callback
	instruments []interface{}
}

func newMeter(scope instrumentation.Scope, state *meterSharedState) *Meter {
	return &Meter{scope: scope, state: state, byIdentity: make(map[string]InstrumentDescriptor)}
}

// checkDuplicate applies spec.md §3's identity rule and DESIGN.md's
// first-registration-wins resolution; it never rejects a registration,
// only warns.
func (m *Meter) checkDuplicate(d InstrumentDescriptor) {
	id := d.identity()
	existing, ok := m.byIdentity[id]
	if !ok {
		m.byIdentity[id] = d
		return
	}
	if !existing.sameIdentity(d) || existing.equalNonIdentity(d) {
		return
	}
	m.state.logger.Warn("duplicate instrument registration, first registration's metadata wins",
		zap.String("instrument", d.Name),
		zap.String("scope", m.scope.Name))
}

func descriptorFor(scope instrumentation.Scope, name string, kind InstrumentKind, vt ValueType, cfg apimetric.InstrumentConfig) InstrumentDescriptor {
	return InstrumentDescriptor{
		Name:        name,
		Description: cfg.Description,
		Unit:        cfg.Unit,
		Kind:        kind,
		ValueType:   vt,
		Advice:      cfg.Advice,
		scopeName:   scope.Name,
	}
}

// buildSyncStreams resolves d against every reader's view registry and
// builds one syncStorage[N] per (reader, matched view) pair.
func buildSyncStreams[N aggregate.Number](m *Meter, d InstrumentDescriptor, monotonic bool) []*syncStorage[N] {
	var streams []*syncStorage[N]
	for i, rd := range m.state.readers {
		readerDefault := rd.DefaultAggregation(d.Kind)
		for _, rs := range m.state.viewRegistry.Resolve(d, readerDefault) {
			s := newSyncStorage[N](rs, monotonic, rd.Temporality(d.Kind), m.state.logger)
			streams = append(streams, s)
			m.storages = append(m.storages, readerStorage{readerIndex: i, storage: s})
		}
	}
	return streams
}

func buildAsyncStreams[N aggregate.Number](m *Meter, d InstrumentDescriptor) []*asyncStorage[N] {
	var streams []*asyncStorage[N]
	for i, rd := range m.state.readers {
		readerDefault := rd.DefaultAggregation(d.Kind)
		for _, rs := range m.state.viewRegistry.Resolve(d, readerDefault) {
			s := newAsyncStorage[N](rs, rd.Temporality(d.Kind), m.state.logger)
			streams = append(streams, s)
			m.storages = append(m.storages, readerStorage{readerIndex: i, storage: s})
		}
	}
	return streams
}

func (m *Meter) register(name string, kind InstrumentKind, vt ValueType, opts []apimetric.InstrumentOption) InstrumentDescriptor {
	cfg := apimetric.NewInstrumentConfig(opts...)
	d := descriptorFor(m.scope, name, kind, vt, cfg)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkDuplicate(d)
	return d
}

func (m *Meter) Int64Counter(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64Counter, error) {
	d := m.register(name, KindCounter, Int64ValueType, opts)
	return &syncNumberInstrument[int64]{streams: buildSyncStreams[int64](m, d, true)}, nil
}

func (m *Meter) Float64Counter(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64Counter, error) {
	d := m.register(name, KindCounter, Float64ValueType, opts)
	return &syncNumberInstrument[float64]{streams: buildSyncStreams[float64](m, d, true)}, nil
}

func (m *Meter) Int64UpDownCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64UpDownCounter, error) {
	d := m.register(name, KindUpDownCounter, Int64ValueType, opts)
	return &syncNumberInstrument[int64]{streams: buildSyncStreams[int64](m, d, false)}, nil
}

func (m *Meter) Float64UpDownCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64UpDownCounter, error) {
	d := m.register(name, KindUpDownCounter, Float64ValueType, opts)
	return &syncNumberInstrument[float64]{streams: buildSyncStreams[float64](m, d, false)}, nil
}

func (m *Meter) Int64Histogram(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64Histogram, error) {
	d := m.register(name, KindHistogram, Int64ValueType, opts)
	return &syncNumberInstrument[int64]{streams: buildSyncStreams[int64](m, d, false)}, nil
}

func (m *Meter) Float64Histogram(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64Histogram, error) {
	d := m.register(name, KindHistogram, Float64ValueType, opts)
	return &syncNumberInstrument[float64]{streams: buildSyncStreams[float64](m, d, false)}, nil
}

func (m *Meter) Int64ObservableCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64Observable, error) {
	d := m.register(name, KindObservableCounter, Int64ValueType, opts)
	return &int64Observable{streams: buildAsyncStreams[int64](m, d)}, nil
}

func (m *Meter) Float64ObservableCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64Observable, error) {
	d := m.register(name, KindObservableCounter, Float64ValueType, opts)
	return &float64Observable{streams: buildAsyncStreams[float64](m, d)}, nil
}

func (m *Meter) Int64ObservableUpDownCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64Observable, error) {
	d := m.register(name, KindObservableUpDownCounter, Int64ValueType, opts)
	return &int64Observable{streams: buildAsyncStreams[int64](m, d)}, nil
}

func (m *Meter) Float64ObservableUpDownCounter(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64Observable, error) {
	d := m.register(name, KindObservableUpDownCounter, Float64ValueType, opts)
	return &float64Observable{streams: buildAsyncStreams[float64](m, d)}, nil
}

func (m *Meter) Int64ObservableGauge(name string, opts ...apimetric.InstrumentOption) (apimetric.Int64Observable, error) {
	d := m.register(name, KindObservableGauge, Int64ValueType, opts)
	return &int64Observable{streams: buildAsyncStreams[int64](m, d)}, nil
}

func (m *Meter) Float64ObservableGauge(name string, opts ...apimetric.InstrumentOption) (apimetric.Float64Observable, error) {
	d := m.register(name, KindObservableGauge, Float64ValueType, opts)
	return &float64Observable{streams: buildAsyncStreams[float64](m, d)}, nil
}

func (m *Meter) RegisterCallback(callback apimetric.Callback, instruments ...interface{}) (apimetric.Registration, error) {
	rc := &registeredCallback{fn: callback, instruments: instruments}
	m.mu.Lock()
	m.callbacks = append(m.callbacks, rc)
	m.mu.Unlock()
	return &callbackRegistration{meter: m, cb: rc}, nil
}

type callbackRegistration struct {
	meter *Meter
	cb    *registeredCallback
}

func (r *callbackRegistration) Unregister() error {
	r.meter.mu.Lock()
	defer r.meter.mu.Unlock()
	for i, c := range r.meter.callbacks {
		if c == r.cb {
			r.meter.callbacks = append(r.meter.callbacks[:i], r.meter.callbacks[i+1:]...)
			return nil
		}
	}
	return nil
}

// runCallbacks invokes every registered callback once, accumulating
// errors rather than stopping at the first failing callback (spec.md
// §4.3: "one misbehaving callback must not block collection of other
// instruments").
func (m *Meter) runCallbacks(ctx context.Context) error {
	m.mu.Lock()
	callbacks := make([]*registeredCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	var err error
	obs := observerImpl{}
	for _, c := range callbacks {
		if cbErr := c.fn(ctx, obs); cbErr != nil {
			err = multierr.Append(err, fmt.Errorf("metric callback: %w", cbErr))
		}
	}
	return err
}

// syncNumberInstrument is the shared implementation behind
// Int64Counter/Float64Counter/Int64UpDownCounter/Float64UpDownCounter/
// Int64Histogram/Float64Histogram: all six differ only in N and in
// whether negative values are meaningful, which the storage enforces (a
// monotonic stream drops negative values).
type syncNumberInstrument[N aggregate.Number] struct {
	streams []*syncStorage[N]
}

func (i *syncNumberInstrument[N]) record(ctx context.Context, value N, opts ...apimetric.RecordOption) {
	cfg := apimetric.NewRecordConfig(opts...)
	attrs := attribute.NewSet(cfg.Attributes...)
	mctx := aggregate.NewMeasureContext(false, [8]byte{}, [16]byte{})
	for _, s := range i.streams {
		s.Record(mctx, value, attrs)
	}
}

func (i *syncNumberInstrument[N]) Add(ctx context.Context, incr N, opts ...apimetric.RecordOption) {
	i.record(ctx, incr, opts...)
}

func (i *syncNumberInstrument[N]) Record(ctx context.Context, value N, opts ...apimetric.RecordOption) {
	i.record(ctx, value, opts...)
}

// int64Observable and float64Observable embed apimetric.Observable by
// value so they satisfy Int64Observable/Float64Observable via promotion
// (see metric.Observable's doc comment) without this package reaching
// into the API package's unexported identifiers.
type int64Observable struct {
	apimetric.Observable
	streams []*asyncStorage[int64]
}
type float64Observable struct {
	apimetric.Observable
	streams []*asyncStorage[float64]
}

// observerImpl is the Observer passed to every Callback invocation; it
// dispatches on the observable's concrete type to reach its per-reader
// streams without the metric API package knowing about sdkmetric.
type observerImpl struct{}

func (observerImpl) ObserveInt64(obsrv apimetric.Int64Observable, value int64, opts ...apimetric.RecordOption) {
	o, ok := obsrv.(*int64Observable)
	if !ok {
		return
	}
	cfg := apimetric.NewRecordConfig(opts...)
	attrs := attribute.NewSet(cfg.Attributes...)
	for _, s := range o.streams {
		s.Observe(value, attrs)
	}
}

func (observerImpl) ObserveFloat64(obsrv apimetric.Float64Observable, value float64, opts ...apimetric.RecordOption) {
	o, ok := obsrv.(*float64Observable)
	if !ok {
		return
	}
	cfg := apimetric.NewRecordConfig(opts...)
	attrs := attribute.NewSet(cfg.Attributes...)
	for _, s := range o.streams {
		s.Observe(value, attrs)
	}
}

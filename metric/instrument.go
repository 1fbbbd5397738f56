// Package metric is the user- and SDK-facing metrics API surface: the
// instrument and MeterProvider interfaces that instrumented code and
// self-observability callers (like sdktrace.BatchSpanProcessor) program
// against. sdkmetric provides the concrete implementation. Splitting API
// from SDK this way mirrors the real go.opentelemetry.io/otel / .../otel/sdk
// split that the teacher repo itself depends on directly (its
// concurrentbatchprocessor/metrics.go imports "go.opentelemetry.io/otel/metric"
// and calls meter.Int64Counter(...), metric.WithDescription(...), exactly
// the shape reproduced here).
package metric

import (
	"context"

	"github.com/open-telemetry/sdk-core/attribute"
)

// InstrumentKind enumerates the six instrument kinds spec.md §3 defines on
// InstrumentDescriptor.
type InstrumentKind int

const (
	KindCounter InstrumentKind = iota
	KindUpDownCounter
	KindHistogram
	KindObservableCounter
	KindObservableUpDownCounter
	KindObservableGauge
)

func (k InstrumentKind) String() string {
	switch k {
	case KindCounter:
		return "Counter"
	case KindUpDownCounter:
		return "UpDownCounter"
	case KindHistogram:
		return "Histogram"
	case KindObservableCounter:
		return "ObservableCounter"
	case KindObservableUpDownCounter:
		return "ObservableUpDownCounter"
	case KindObservableGauge:
		return "ObservableGauge"
	default:
		return "Unknown"
	}
}

// ValueType enumerates the two numeric kinds spec.md §3 defines.
type ValueType int

const (
	Int64ValueType ValueType = iota
	Float64ValueType
)

// InstrumentOption configures optional instrument metadata.
type InstrumentOption interface{ applyInstrument(*InstrumentConfig) }

// InstrumentConfig accumulates InstrumentOption values.
type InstrumentConfig struct {
	Description string
	Unit        string
	Advice      Advice
}

// Advice carries implementation hints, e.g. explicit histogram boundaries
// (spec.md §3: InstrumentDescriptor.advice).
type Advice struct {
	ExplicitBucketBoundaries []float64
}

type instrumentOptionFunc func(*InstrumentConfig)

func (f instrumentOptionFunc) applyInstrument(c *InstrumentConfig) { f(c) }

func WithDescription(desc string) InstrumentOption {
	return instrumentOptionFunc(func(c *InstrumentConfig) { c.Description = desc })
}

func WithUnit(unit string) InstrumentOption {
	return instrumentOptionFunc(func(c *InstrumentConfig) { c.Unit = unit })
}

func WithExplicitBucketBoundaries(bounds ...float64) InstrumentOption {
	return instrumentOptionFunc(func(c *InstrumentConfig) {
		c.Advice.ExplicitBucketBoundaries = bounds
	})
}

func NewInstrumentConfig(opts ...InstrumentOption) InstrumentConfig {
	var c InstrumentConfig
	for _, o := range opts {
		o.applyInstrument(&c)
	}
	return c
}

// RecordOption configures a single measurement, e.g. its attributes.
type RecordOption interface{ applyRecord(*RecordConfig) }

type RecordConfig struct {
	Attributes []attribute.KeyValue
}

type recordOptionFunc func(*RecordConfig)

func (f recordOptionFunc) applyRecord(c *RecordConfig) { f(c) }

func WithAttributes(kvs ...attribute.KeyValue) RecordOption {
	return recordOptionFunc(func(c *RecordConfig) { c.Attributes = kvs })
}

func NewRecordConfig(opts ...RecordOption) RecordConfig {
	var c RecordConfig
	for _, o := range opts {
		o.applyRecord(&c)
	}
	return c
}

// Int64Counter records monotonically increasing int64 measurements.
type Int64Counter interface {
	Add(ctx context.Context, incr int64, opts ...RecordOption)
}

// Float64Counter records monotonically increasing float64 measurements.
type Float64Counter interface {
	Add(ctx context.Context, incr float64, opts ...RecordOption)
}

// Int64UpDownCounter records int64 measurements that may decrease.
type Int64UpDownCounter interface {
	Add(ctx context.Context, incr int64, opts ...RecordOption)
}

// Float64UpDownCounter records float64 measurements that may decrease.
type Float64UpDownCounter interface {
	Add(ctx context.Context, incr float64, opts ...RecordOption)
}

// Int64Histogram records an int64 distribution.
type Int64Histogram interface {
	Record(ctx context.Context, value int64, opts ...RecordOption)
}

// Float64Histogram records a float64 distribution.
type Float64Histogram interface {
	Record(ctx context.Context, value float64, opts ...RecordOption)
}

// Int64Observer is passed to an asynchronous int64 callback.
type Int64Observer interface {
	Observe(value int64, opts ...RecordOption)
}

// Float64Observer is passed to an asynchronous float64 callback.
type Float64Observer interface {
	Observe(value float64, opts ...RecordOption)
}

// Observable is embedded by SDK-side observable instrument handles so
// they satisfy Int64Observable/Float64Observable without exporting the
// marker method: embedding promotes observableMarker from this package,
// which is the only way a type declared in another package can satisfy
// an interface built on an unexported method.
type Observable struct{}

func (Observable) observableMarker() {}

// Int64Observable is the handle returned by an observable int64
// instrument constructor; it identifies the instrument to
// RegisterCallback.
type Int64Observable interface{ observableMarker() }

// Float64Observable is the float64 analogue of Int64Observable.
type Float64Observable interface{ observableMarker() }

// Registration is returned by RegisterCallback and can be used to
// unregister it (spec.md §9: "callbacks are unregistered via explicit
// API, not garbage collection").
type Registration interface {
	Unregister() error
}

// Callback is a user function invoked during collection to populate one or
// more observable instruments via the supplied Observer.
type Callback func(context.Context, Observer) error

// Observer lets a callback report values for any of the observable
// instruments it was registered against.
type Observer interface {
	ObserveInt64(obsrv Int64Observable, value int64, opts ...RecordOption)
	ObserveFloat64(obsrv Float64Observable, value float64, opts ...RecordOption)
}

// Meter creates instruments and registers asynchronous callbacks.
// Identity of instruments is case-insensitive on name (spec.md §3).
type Meter interface {
	Int64Counter(name string, opts ...InstrumentOption) (Int64Counter, error)
	Float64Counter(name string, opts ...InstrumentOption) (Float64Counter, error)
	Int64UpDownCounter(name string, opts ...InstrumentOption) (Int64UpDownCounter, error)
	Float64UpDownCounter(name string, opts ...InstrumentOption) (Float64UpDownCounter, error)
	Int64Histogram(name string, opts ...InstrumentOption) (Int64Histogram, error)
	Float64Histogram(name string, opts ...InstrumentOption) (Float64Histogram, error)

	Int64ObservableCounter(name string, opts ...InstrumentOption) (Int64Observable, error)
	Float64ObservableCounter(name string, opts ...InstrumentOption) (Float64Observable, error)
	Int64ObservableUpDownCounter(name string, opts ...InstrumentOption) (Int64Observable, error)
	Float64ObservableUpDownCounter(name string, opts ...InstrumentOption) (Float64Observable, error)
	Int64ObservableGauge(name string, opts ...InstrumentOption) (Int64Observable, error)
	Float64ObservableGauge(name string, opts ...InstrumentOption) (Float64Observable, error)

	RegisterCallback(callback Callback, instruments ...interface{}) (Registration, error)
}

// MeterProvider hands out Meters scoped by instrumentation.Scope name.
type MeterProvider interface {
	Meter(name string, opts ...MeterOption) Meter
}

// MeterOption configures a Meter's scope (version, schema URL).
type MeterOption interface{ applyMeter(*MeterConfig) }

type MeterConfig struct {
	Version   string
	SchemaURL string
}

type meterOptionFunc func(*MeterConfig)

func (f meterOptionFunc) applyMeter(c *MeterConfig) { f(c) }

func WithInstrumentationVersion(v string) MeterOption {
	return meterOptionFunc(func(c *MeterConfig) { c.Version = v })
}

func WithSchemaURL(url string) MeterOption {
	return meterOptionFunc(func(c *MeterConfig) { c.SchemaURL = url })
}

package metric

import "context"

// NewNoopMeterProvider returns a MeterProvider whose instruments silently
// discard every measurement; used as the default for components built
// without a MeterProvider option (autoconfigure's Build passes none to the
// processors it creates).
func NewNoopMeterProvider() MeterProvider { return noopProvider{} }

type noopProvider struct{}

func (noopProvider) Meter(string, ...MeterOption) Meter { return noopMeter{} }

type noopMeter struct{}

func (noopMeter) Int64Counter(string, ...InstrumentOption) (Int64Counter, error) {
	return noopInt64Instrument{}, nil
}
func (noopMeter) Float64Counter(string, ...InstrumentOption) (Float64Counter, error) {
	return noopFloat64Instrument{}, nil
}
func (noopMeter) Int64UpDownCounter(string, ...InstrumentOption) (Int64UpDownCounter, error) {
	return noopInt64Instrument{}, nil
}
func (noopMeter) Float64UpDownCounter(string, ...InstrumentOption) (Float64UpDownCounter, error) {
	return noopFloat64Instrument{}, nil
}
func (noopMeter) Int64Histogram(string, ...InstrumentOption) (Int64Histogram, error) {
	return noopInt64Instrument{}, nil
}
func (noopMeter) Float64Histogram(string, ...InstrumentOption) (Float64Histogram, error) {
	return noopFloat64Instrument{}, nil
}
func (noopMeter) Int64ObservableCounter(string, ...InstrumentOption) (Int64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) Float64ObservableCounter(string, ...InstrumentOption) (Float64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) Int64ObservableUpDownCounter(string, ...InstrumentOption) (Int64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) Float64ObservableUpDownCounter(string, ...InstrumentOption) (Float64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) Int64ObservableGauge(string, ...InstrumentOption) (Int64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) Float64ObservableGauge(string, ...InstrumentOption) (Float64Observable, error) {
	return noopObservable{}, nil
}
func (noopMeter) RegisterCallback(Callback, ...interface{}) (Registration, error) {
	return noopRegistration{}, nil
}

type noopInt64Instrument struct{}

func (noopInt64Instrument) Add(context.Context, int64, ...RecordOption)    {}
func (noopInt64Instrument) Record(context.Context, int64, ...RecordOption) {}

type noopFloat64Instrument struct{}

func (noopFloat64Instrument) Add(context.Context, float64, ...RecordOption)    {}
func (noopFloat64Instrument) Record(context.Context, float64, ...RecordOption) {}

type noopObservable struct{}

func (noopObservable) observableMarker() {}

type noopRegistration struct{}

func (noopRegistration) Unregister() error { return nil }

package sdktrace

import (
	"github.com/open-telemetry/sdk-core/attribute"
	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// SamplingDecision is the outcome of a sampling decision.
type SamplingDecision int

const (
	Drop SamplingDecision = iota
	RecordOnly
	RecordAndSample
)

// SamplingParameters carries the inputs a Sampler uses to decide.
type SamplingParameters struct {
	ParentContext coretrace.SpanContext
	TraceID       coretrace.TraceID
	Name          string
	Kind          coretrace.SpanKind
	Attributes    []attribute.KeyValue
	Links         []Link
}

// SamplingResult is the Sampler's decision plus any attributes/trace-state
// it wants attached.
type SamplingResult struct {
	Decision   SamplingDecision
	Attributes []attribute.KeyValue
	TraceState coretrace.TraceState
}

// Sampler decides whether a new span should be recorded and/or exported.
// Concrete sampler algorithms (TraceIDRatioBased, ParentBased, …) are a
// Non-goal of this core per spec.md §1; only the interface contract is
// specified here.
type Sampler interface {
	ShouldSample(p SamplingParameters) SamplingResult
	Description() string
}

// AlwaysSample is the trivial sampler used as a default and in tests; with
// NeverSample it is one of the two concrete samplers this core provides,
// since neither requires an algorithm beyond the contract itself.
type AlwaysSample struct{}

func (AlwaysSample) ShouldSample(SamplingParameters) SamplingResult {
	return SamplingResult{Decision: RecordAndSample}
}
func (AlwaysSample) Description() string { return "AlwaysOnSampler" }

// NeverSample never records; used by the inert/disabled-SDK autoconfigure
// path (spec.md §4.5 step 4).
type NeverSample struct{}

func (NeverSample) ShouldSample(SamplingParameters) SamplingResult {
	return SamplingResult{Decision: Drop}
}
func (NeverSample) Description() string { return "AlwaysOffSampler" }

// Package sdklog supplements the distilled spec with a log signal pipeline
// built the same way as sdktrace's trace pipeline (SPEC_FULL.md §3): a
// BatchLogRecordProcessor generalizes BatchSpanProcessor's bounded-queue,
// worker-loop algorithm over log records instead of span snapshots.
package sdklog

import (
	"time"

	"github.com/open-telemetry/sdk-core/attribute"
	"github.com/open-telemetry/sdk-core/instrumentation"
	"github.com/open-telemetry/sdk-core/resource"
	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// Severity mirrors the OTel log data model's severity number scale.
type Severity int

const (
	SeverityUnspecified Severity = iota
	SeverityTrace
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

// Record is one emitted log record, already associated with whatever
// trace context was active when it was emitted (spec.md's cross-signal
// correlation requirement carried over from the tracing pipeline).
type Record struct {
	Timestamp         time.Time
	ObservedTimestamp time.Time
	Severity          Severity
	SeverityText      string
	Body              string
	Attributes        []attribute.KeyValue
	Resource          resource.Resource
	Scope             instrumentation.Scope
	TraceID           coretrace.TraceID
	SpanID            coretrace.SpanID
	TraceFlags        coretrace.TraceFlags
}

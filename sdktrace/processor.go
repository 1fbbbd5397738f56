package sdktrace

import "context"

// SpanProcessor is notified as spans end and is responsible for getting
// their data to a SpanExporter (spec.md §4.1).
type SpanProcessor interface {
	// OnEnd is called exactly once per span, after End(). It must not
	// block the calling goroutine for long (spec.md §5: "non-blocking").
	OnEnd(s ReadOnlySpan)
	// ForceFlush exports every span handed to OnEnd before this call
	// returns, or returns the first error encountered.
	ForceFlush(ctx context.Context) error
	// Shutdown flushes then releases the processor's resources. Idempotent:
	// the second and later calls return the first call's result.
	Shutdown(ctx context.Context) error
}

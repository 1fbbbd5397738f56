package sdktrace

import "context"

// SpanExporter is the interface consumed by SpanProcessors, as specified at
// its interface boundary by spec.md §6: the core never constructs a wire
// format, it only hands batches to whatever implements this.
type SpanExporter interface {
	ExportSpans(ctx context.Context, spans []ReadOnlySpan) error
	Shutdown(ctx context.Context) error
}

// noopExporter discards everything; it backs autoconfigure's built-in
// "none" span exporter (SPEC_FULL.md §3).
type noopExporter struct{}

// NewNoopExporter returns an exporter that accepts and drops every batch.
func NewNoopExporter() SpanExporter { return noopExporter{} }

func (noopExporter) ExportSpans(context.Context, []ReadOnlySpan) error { return nil }
func (noopExporter) Shutdown(context.Context) error                   { return nil }

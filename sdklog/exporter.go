package sdklog

import "context"

// LogRecordExporter is the interface consumed by LogRecordProcessors,
// mirroring sdktrace.SpanExporter's interface boundary: the core never
// constructs a wire format, it only hands batches to whatever implements
// this (SPEC_FULL.md §3).
type LogRecordExporter interface {
	Export(ctx context.Context, records []Record) error
	Shutdown(ctx context.Context) error
}

// noopExporter discards everything; it backs autoconfigure's built-in
// "none" log record exporter.
type noopExporter struct{}

// NewNoopExporter returns an exporter that accepts and drops every batch.
func NewNoopExporter() LogRecordExporter { return noopExporter{} }

func (noopExporter) Export(context.Context, []Record) error { return nil }
func (noopExporter) Shutdown(context.Context) error          { return nil }

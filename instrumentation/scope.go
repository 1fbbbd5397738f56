// Package instrumentation describes the library that created a Tracer or
// Meter, used by the View registry's scope selectors (spec.md §4.4).
package instrumentation

// Scope identifies the instrumentation library that obtained a Tracer or
// Meter.
type Scope struct {
	Name      string
	Version   string
	SchemaURL string
}

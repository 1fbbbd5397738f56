package trace

// SpanContext is the immutable, propagatable identity of a span: trace id,
// span id, flags and trace-state, plus a creation-time remote flag
// (spec.md §3). Equality is by all fields.
type SpanContext struct {
	traceID    TraceID
	spanID     SpanID
	traceFlags TraceFlags
	traceState TraceState
	remote     bool
}

// SpanContextConfig groups the fields needed to build a SpanContext.
type SpanContextConfig struct {
	TraceID    TraceID
	SpanID     SpanID
	TraceFlags TraceFlags
	TraceState TraceState
	Remote     bool
}

// NewSpanContext builds a SpanContext from cfg.
func NewSpanContext(cfg SpanContextConfig) SpanContext {
	return SpanContext{
		traceID:    cfg.TraceID,
		spanID:     cfg.SpanID,
		traceFlags: cfg.TraceFlags,
		traceState: cfg.TraceState,
		remote:     cfg.Remote,
	}
}

func (sc SpanContext) TraceID() TraceID       { return sc.traceID }
func (sc SpanContext) SpanID() SpanID         { return sc.spanID }
func (sc SpanContext) TraceFlags() TraceFlags { return sc.traceFlags }
func (sc SpanContext) TraceState() TraceState { return sc.traceState }
func (sc SpanContext) IsRemote() bool         { return sc.remote }
func (sc SpanContext) IsSampled() bool        { return sc.traceFlags.IsSampled() }

// IsValid reports whether both the trace id and span id are non-zero
// (spec.md §3).
func (sc SpanContext) IsValid() bool {
	return sc.traceID.IsValid() && sc.spanID.IsValid()
}

// Equal compares every field, per spec.md §3's equality invariant.
func (sc SpanContext) Equal(other SpanContext) bool {
	return sc.traceID == other.traceID &&
		sc.spanID == other.spanID &&
		sc.traceFlags == other.traceFlags &&
		sc.traceState.String() == other.traceState.String() &&
		sc.remote == other.remote
}

// WithTraceState returns a copy of sc with a new TraceState.
func (sc SpanContext) WithTraceState(ts TraceState) SpanContext {
	sc.traceState = ts
	return sc
}

// WithRemote returns a copy of sc with the remote flag set to remote.
func (sc SpanContext) WithRemote(remote bool) SpanContext {
	sc.remote = remote
	return sc
}

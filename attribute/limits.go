package attribute

// Limits bounds the size of an attribute container: a maximum count of
// distinct attributes and a maximum length for string values, truncated
// (never rejected) per spec.md §3.
type Limits struct {
	// CountLimit is the maximum number of attributes retained; beyond this
	// count, additional attributes are dropped (first-seen wins).
	CountLimit int
	// ValueLengthLimit truncates STRING and STRINGSLICE values longer than
	// this many runes. Zero or negative means unlimited.
	ValueLengthLimit int
}

// DefaultLimits matches the OpenTelemetry default span/link/event attribute
// limits (128 attributes, unbounded string length).
var DefaultLimits = Limits{
	CountLimit:       128,
	ValueLengthLimit: -1,
}

// Apply truncates and caps kvs according to l, returning the resulting
// KeyValues and the number of attributes dropped for exceeding CountLimit.
func (l Limits) Apply(kvs []KeyValue) (out []KeyValue, dropped int) {
	out = make([]KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		if l.CountLimit > 0 && len(out) >= l.CountLimit {
			dropped++
			continue
		}
		out = append(out, l.truncate(kv))
	}
	return out, dropped
}

func (l Limits) truncate(kv KeyValue) KeyValue {
	if l.ValueLengthLimit <= 0 {
		return kv
	}
	switch kv.Value.vtype {
	case STRING:
		kv.Value = StringValue(truncateString(kv.Value.AsString(), l.ValueLengthLimit))
	case STRINGSLICE:
		src := kv.Value.AsStringSlice()
		out := make([]string, len(src))
		for i, s := range src {
			out[i] = truncateString(s, l.ValueLengthLimit)
		}
		kv.Value = StringSliceValue(out)
	}
	return kv
}

func truncateString(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

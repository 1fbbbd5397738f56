package attribute

import (
	"sort"
	"strings"
)

// Sortable is a scratch slice reused across Set construction to avoid an
// allocation while sorting. Grounded on the sortSlice field of the
// reference record type in the pre-1.0 OpenTelemetry Go SDK (see
// DESIGN.md's attribute package entry).
type Sortable []KeyValue

func (s Sortable) Len() int      { return len(s) }
func (s Sortable) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s Sortable) Less(i, j int) bool {
	if s[i].Key == s[j].Key {
		return s[i].Value.vtype < s[j].Value.vtype
	}
	return s[i].Key < s[j].Key
}

// Distinct is an opaque, comparable equivalence key for a Set: two Sets
// with the same ordered, deduplicated contents produce an equal Distinct,
// making it suitable as a map key (used by metric storage's
// attributes->handle map). Grounded on the `encoded string` field of the
// pre-1.0 SDK's `labels` type (other_examples reference, see DESIGN.md);
// unlike that reference we encode the type tag alongside each value so
// STRING "1" and INT64 1 never collide.
type Distinct struct {
	encoded string
}

// Set is an ordered, deduplicated, immutable collection of KeyValues. The
// zero Set is empty and valid.
type Set struct {
	kvs []KeyValue
}

// NewSet builds a Set from kvs, sorting and deduplicating on key identity
// (name+type). Later entries win on conflict, matching the "last wins" rule
// used by Attributes construction in spec.md §3.
func NewSet(kvs ...KeyValue) Set {
	var scratch Sortable
	return NewSetWithSortable(kvs, &scratch)
}

// NewSetWithSortable is like NewSet but reuses the caller-supplied scratch
// slice, avoiding an allocation on the hot recording path (mirrors
// acquireHandle in the reference SDK).
func NewSetWithSortable(kvs []KeyValue, scratch *Sortable) Set {
	if len(kvs) == 0 {
		return Set{}
	}
	cp := make([]KeyValue, len(kvs))
	copy(cp, kvs)

	*scratch = Sortable(cp)
	sort.Stable(*scratch)
	cp = []KeyValue(*scratch)

	// Dedup on identity, keeping the last occurrence for a given identity.
	seen := make(map[identityKey]int, len(cp))
	for i, kv := range cp {
		seen[kv.identity()] = i
	}
	out := make([]KeyValue, 0, len(seen))
	for i, kv := range cp {
		if seen[kv.identity()] == i {
			out = append(out, kv)
		}
	}
	return Set{kvs: out}
}

// Len returns the number of distinct attributes in the set.
func (s Set) Len() int { return len(s.kvs) }

// ToSlice returns a copy of the set's contents in sorted order.
func (s Set) ToSlice() []KeyValue {
	cp := make([]KeyValue, len(s.kvs))
	copy(cp, s.kvs)
	return cp
}

// Value looks up the first KeyValue matching name regardless of type.
func (s Set) Value(k Key) (Value, bool) {
	for _, kv := range s.kvs {
		if kv.Key == k {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// Equivalent returns a Distinct suitable for use as a map key.
func (s Set) Equivalent() Distinct {
	var b strings.Builder
	for _, kv := range s.kvs {
		b.WriteString(string(kv.Key))
		b.WriteByte('\x00')
		b.WriteString(kv.Value.vtype.String())
		b.WriteByte('\x00')
		b.WriteString(kv.Value.Emit())
		b.WriteByte('\x1f')
	}
	return Distinct{encoded: b.String()}
}

// Append returns a new Set containing the union of s and kvs, with kvs
// taking precedence on conflicting identities. Used by AttributesProcessor
// implementations that add or override attributes per view (spec.md §4.4).
func (s Set) Append(kvs ...KeyValue) Set {
	merged := make([]KeyValue, 0, len(s.kvs)+len(kvs))
	merged = append(merged, s.kvs...)
	merged = append(merged, kvs...)
	return NewSet(merged...)
}

// Drop returns a new Set with the named keys removed, regardless of type.
func (s Set) Drop(keys ...Key) Set {
	drop := make(map[Key]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := make([]KeyValue, 0, len(s.kvs))
	for _, kv := range s.kvs {
		if !drop[kv.Key] {
			out = append(out, kv)
		}
	}
	return Set{kvs: out}
}

package attribute

// Key is the name half of a KeyValue. Two Keys with the same string but
// paired with values of different Type are distinct attributes (spec.md
// §3, InstrumentDescriptor identity is case-insensitive but attribute keys
// are not).
type Key string

// KeyValue is a single typed attribute.
type KeyValue struct {
	Key   Key
	Value Value
}

func Bool(k string, v bool) KeyValue               { return KeyValue{Key(k), BoolValue(v)} }
func Int64(k string, v int64) KeyValue              { return KeyValue{Key(k), Int64Value(v)} }
func Int(k string, v int) KeyValue                  { return KeyValue{Key(k), Int64Value(int64(v))} }
func Float64(k string, v float64) KeyValue          { return KeyValue{Key(k), Float64Value(v)} }
func String(k string, v string) KeyValue            { return KeyValue{Key(k), StringValue(v)} }
func BoolSlice(k string, v []bool) KeyValue         { return KeyValue{Key(k), BoolSliceValue(v)} }
func Int64Slice(k string, v []int64) KeyValue       { return KeyValue{Key(k), Int64SliceValue(v)} }
func Float64Slice(k string, v []float64) KeyValue   { return KeyValue{Key(k), Float64SliceValue(v)} }
func StringSlice(k string, v []string) KeyValue     { return KeyValue{Key(k), StringSliceValue(v)} }

// identityKey distinguishes same-name, different-type attributes, matching
// spec.md §3's "keys with the same name but different value types are
// distinct" rule.
type identityKey struct {
	name  Key
	vtype Type
}

func (kv KeyValue) identity() identityKey {
	return identityKey{name: kv.Key, vtype: kv.Value.vtype}
}

// Package attribute provides a typed key/value bag used throughout the SDK
// to describe spans, metric points and resources.
package attribute

import (
	"fmt"
	"math"
)

// Type identifies the kind of value held by a KeyValue. Two keys with the
// same name but different Type are distinct attributes.
type Type int

const (
	INVALID Type = iota
	BOOL
	INT64
	FLOAT64
	STRING
	BOOLSLICE
	INT64SLICE
	FLOAT64SLICE
	STRINGSLICE
)

func (t Type) String() string {
	switch t {
	case BOOL:
		return "BOOL"
	case INT64:
		return "INT64"
	case FLOAT64:
		return "FLOAT64"
	case STRING:
		return "STRING"
	case BOOLSLICE:
		return "BOOLSLICE"
	case INT64SLICE:
		return "INT64SLICE"
	case FLOAT64SLICE:
		return "FLOAT64SLICE"
	case STRINGSLICE:
		return "STRINGSLICE"
	default:
		return "INVALID"
	}
}

// Value represents the value half of a KeyValue. The zero Value is invalid.
type Value struct {
	vtype    Type
	numeric  uint64
	stringly string
	slice    interface{}
}

// Type returns the type of the value.
func (v Value) Type() Type { return v.vtype }

func BoolValue(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{vtype: BOOL, numeric: n}
}

func Int64Value(i int64) Value {
	return Value{vtype: INT64, numeric: uint64(i)}
}

func Float64Value(f float64) Value {
	return Value{vtype: FLOAT64, numeric: float64ToRaw(f)}
}

func StringValue(s string) Value {
	return Value{vtype: STRING, stringly: s}
}

func BoolSliceValue(b []bool) Value {
	cp := make([]bool, len(b))
	copy(cp, b)
	return Value{vtype: BOOLSLICE, slice: cp}
}

func Int64SliceValue(i []int64) Value {
	cp := make([]int64, len(i))
	copy(cp, i)
	return Value{vtype: INT64SLICE, slice: cp}
}

func Float64SliceValue(f []float64) Value {
	cp := make([]float64, len(f))
	copy(cp, f)
	return Value{vtype: FLOAT64SLICE, slice: cp}
}

func StringSliceValue(s []string) Value {
	cp := make([]string, len(s))
	copy(cp, s)
	return Value{vtype: STRINGSLICE, slice: cp}
}

func (v Value) AsBool() bool          { return v.numeric == 1 }
func (v Value) AsInt64() int64        { return int64(v.numeric) }
func (v Value) AsFloat64() float64    { return rawToFloat64(v.numeric) }
func (v Value) AsString() string      { return v.stringly }
func (v Value) AsBoolSlice() []bool   { return v.slice.([]bool) }
func (v Value) AsInt64Slice() []int64 { return v.slice.([]int64) }
func (v Value) AsFloat64Slice() []float64 {
	return v.slice.([]float64)
}
func (v Value) AsStringSlice() []string { return v.slice.([]string) }

// Emit returns a human-readable representation, used for debugging and
// trace-state-adjacent logging; not a wire format.
func (v Value) Emit() string {
	switch v.vtype {
	case BOOL:
		return fmt.Sprintf("%t", v.AsBool())
	case INT64:
		return fmt.Sprintf("%d", v.AsInt64())
	case FLOAT64:
		return fmt.Sprintf("%g", v.AsFloat64())
	case STRING:
		return v.stringly
	case BOOLSLICE, INT64SLICE, FLOAT64SLICE, STRINGSLICE:
		return fmt.Sprintf("%v", v.slice)
	default:
		return "unknown"
	}
}

func float64ToRaw(f float64) uint64 {
	return math.Float64bits(f)
}

func rawToFloat64(r uint64) float64 {
	return math.Float64frombits(r)
}

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanContextValidity(t *testing.T) {
	var zero SpanContext
	assert.False(t, zero.IsValid())

	tid, _ := TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	sid, _ := SpanIDFromHex("0102030405060708")
	sc := NewSpanContext(SpanContextConfig{TraceID: tid, SpanID: sid})
	assert.True(t, sc.IsValid())
}

func TestSpanContextEqualityByAllFields(t *testing.T) {
	tid, _ := TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	sid, _ := SpanIDFromHex("0102030405060708")
	a := NewSpanContext(SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: FlagsSampled})
	b := a
	assert.True(t, a.Equal(b))

	c := a.WithRemote(true)
	assert.False(t, a.Equal(c))
}

func TestTraceStateUniqueOnKey(t *testing.T) {
	ts, err := ParseTraceState("a=1,b=2,a=3")
	require.NoError(t, err)
	require.Equal(t, 2, ts.Len())
	assert.Equal(t, "1", ts.Get("a"))
}

func TestTraceStateInsertMovesToFront(t *testing.T) {
	ts, _ := ParseTraceState("a=1,b=2")
	ts2 := ts.Insert("b", "9")
	assert.Equal(t, "b=9,a=1", ts2.String())
}

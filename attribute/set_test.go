package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetDedupAndSort(t *testing.T) {
	s := NewSet(
		String("b", "2"),
		String("a", "1"),
		String("b", "3"), // overrides the earlier "b"
	)
	require.Equal(t, 2, s.Len())
	got := s.ToSlice()
	assert.Equal(t, Key("a"), got[0].Key)
	assert.Equal(t, Key("b"), got[1].Key)
	v, ok := s.Value("b")
	require.True(t, ok)
	assert.Equal(t, "3", v.AsString())
}

func TestSameNameDifferentTypeAreDistinct(t *testing.T) {
	s := NewSet(String("k", "1"), Int64("k", 1))
	assert.Equal(t, 2, s.Len())
}

func TestEquivalentStableAcrossOrder(t *testing.T) {
	a := NewSet(String("x", "1"), Int64("y", 2))
	b := NewSet(Int64("y", 2), String("x", "1"))
	assert.Equal(t, a.Equivalent(), b.Equivalent())
}

func TestEquivalentDistinguishesTypes(t *testing.T) {
	a := NewSet(String("k", "1"))
	b := NewSet(Int64("k", 1))
	assert.NotEqual(t, a.Equivalent(), b.Equivalent())
}

func TestLimitsApplyTruncatesAndCaps(t *testing.T) {
	l := Limits{CountLimit: 1, ValueLengthLimit: 2}
	out, dropped := l.Apply([]KeyValue{String("a", "hello"), String("b", "world")})
	require.Len(t, out, 1)
	assert.Equal(t, "he", out[0].Value.AsString())
	assert.Equal(t, 1, dropped)
}

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceFlagsRoundTripAllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		f := FromByte(byte(b))
		assert.Equal(t, byte(b), f.AsByte())
		assert.Equal(t, f, FromByte(byte(b)))
		assert.Equal(t, b&0x01 != 0, f.IsSampled())
	}
}

func TestTraceFlagsAsHex(t *testing.T) {
	assert.Equal(t, "01", FromByte(0x01).AsHex())
	assert.Equal(t, "ff", FromByte(0xff).AsHex())
	assert.Equal(t, "00", FromByte(0x00).AsHex())
}

func TestTraceFlagsWithSampled(t *testing.T) {
	f := FromByte(0x00)
	assert.True(t, f.WithSampled(true).IsSampled())
	assert.False(t, f.WithSampled(true).WithSampled(false).IsSampled())
}

package bits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToIntSignExtension(t *testing.T) {
	tests := []struct {
		name  string
		v     uint64
		width uint
		want  int64
	}{
		{"zero", 0, 32, 0},
		{"max positive 16-bit", 0x7FFF, 16, 0x7FFF},
		{"negative 16-bit", 0xFFFF, 16, -1},
		{"min negative 32-bit", 0x80000000, 32, math.MinInt32},
		{"8-bit negative", 0xFF, 8, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.v, tt.width))
		})
	}
}

func TestToUintMasksWidth(t *testing.T) {
	assert.Equal(t, uint64(0xFF), ToUint(0x1FF, 8))
	assert.Equal(t, uint64(0), ToUint(0xFFFFFFFF, 0))
	assert.Equal(t, uint64(0xFFFFFFFF), ToUint(0xFFFFFFFF, 32))
}

func TestGetBitsAndByte(t *testing.T) {
	v := uint64(0xCAFEBABE)
	assert.Equal(t, uint64(0xBE), GetBits(v, 0, 7))
	assert.Equal(t, uint8(0xBE), GetByte(v, 0))
	assert.Equal(t, uint8(0xCA), GetByte(v, 3))
}

func TestSetClearInvertBit(t *testing.T) {
	v := uint64(0)
	v = SetBit(v, 3)
	assert.Equal(t, uint64(0x8), v)
	v = InvertBit(v, 3)
	assert.Equal(t, uint64(0), v)
	v = SetBit(v, 0)
	v = ClearBit(v, 0)
	assert.Equal(t, uint64(0), v)
}

func TestChangeBits(t *testing.T) {
	v := uint64(0xFFFFFFFF)
	got := ChangeBits(v, 8, 15, 0)
	assert.Equal(t, uint64(0xFFFF00FF), got)
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8} {
		v := uint64(0xCAFEBABEDEADBEEF) & (uint64(1)<<(uint(n)*8) - 1)
		if n == 8 {
			v = 0xCAFEBABEDEADBEEF
		}
		b := ToBytes(v, n)
		assert.Equal(t, v, FromBytes(b, uint(n)*8, false))
	}
}

func TestDetectOverflowAdd(t *testing.T) {
	// 0x7FFFFFFF + 1 overflows a 32-bit signed add
	a := uint64(0x7FFFFFFF)
	b := uint64(1)
	result := ToUint(a+b, 32)
	assert.True(t, DetectOverflow(a, b, result, 32, false))

	// 1 + 1 does not overflow
	result2 := ToUint(1+1, 32)
	assert.False(t, DetectOverflow(1, 1, result2, 32, false))
}

func TestDetectOverflowSub(t *testing.T) {
	// MinInt32 - 1 overflows
	a := uint64(0x80000000)
	b := uint64(1)
	result := ToUint(a-b, 32)
	assert.True(t, DetectOverflow(a, b, result, 32, true))
}

func TestFromStringRadixes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"42", 42},
		{"-1", 0xFFFFFFFF},
		{"0b101", 5},
		{"0o17", 15},
		{"0x2A", 42},
		{"1e2", 100},
		{"'a'", 'a'},
		{"'\\n'", '\n'},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := FromString(tt.in, 32, false)
			assert.True(t, ok, "expected %q to parse", tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "0x", "1.5", "'ab'"} {
		_, ok := FromString(s, 32, false)
		assert.False(t, ok, "expected %q to fail", s)
	}
}

func TestDecodeEscapedString(t *testing.T) {
	got, ok := DecodeEscapedString(`hello\nworld\t\\end`)
	assert.True(t, ok)
	assert.Equal(t, "hello\nworld\t\\end", got)
}

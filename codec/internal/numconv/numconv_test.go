package numconv

import (
	"math"
	"testing"

	"github.com/wippyai/heapcodec"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		n    heapcodec.Number
		bits int
		want int64
		ok   bool
	}{
		{"int8 max", heapcodec.IntNumber(127), 8, 127, true},
		{"int8 min", heapcodec.IntNumber(-128), 8, -128, true},
		{"int8 overflow", heapcodec.IntNumber(128), 8, 0, false},
		{"int8 underflow", heapcodec.IntNumber(-129), 8, 0, false},
		{"int16", heapcodec.IntNumber(-30000), 16, -30000, true},
		{"int32 overflow", heapcodec.IntNumber(math.MaxInt32 + 1), 32, 0, false},
		{"int64 max", heapcodec.IntNumber(math.MaxInt64), 64, math.MaxInt64, true},
		{"uint above int64", heapcodec.UintNumber(math.MaxUint64), 64, 0, false},
		{"integral float", heapcodec.FloatNumber(42), 32, 42, true},
		{"fractional float", heapcodec.FloatNumber(4.2), 64, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.n, tt.bits)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ToInt(%v, %d) = %d, %v; want %d, %v", tt.n, tt.bits, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToUint(t *testing.T) {
	tests := []struct {
		name string
		n    heapcodec.Number
		bits int
		want uint64
		ok   bool
	}{
		{"uint8 max", heapcodec.IntNumber(255), 8, 255, true},
		{"uint8 overflow", heapcodec.IntNumber(256), 8, 0, false},
		{"negative", heapcodec.IntNumber(-1), 32, 0, false},
		{"uint16", heapcodec.IntNumber(65535), 16, 65535, true},
		{"uint32 overflow", heapcodec.IntNumber(math.MaxUint32 + 1), 32, 0, false},
		{"uint64 max", heapcodec.UintNumber(math.MaxUint64), 64, math.MaxUint64, true},
		{"fractional float", heapcodec.FloatNumber(1.5), 64, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToUint(tt.n, tt.bits)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ToUint(%v, %d) = %d, %v; want %d, %v", tt.n, tt.bits, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	if f, ok := ToFloat(heapcodec.IntNumber(3), 64); !ok || f != 3 {
		t.Errorf("ToFloat(3) = %v, %v", f, ok)
	}
	if _, ok := ToFloat(heapcodec.FloatNumber(math.MaxFloat64), 32); ok {
		t.Error("MaxFloat64 should not fit float32")
	}
	if f, ok := ToFloat(heapcodec.FloatNumber(math.Inf(1)), 32); !ok || !math.IsInf(f, 1) {
		t.Errorf("ToFloat(+Inf, 32) = %v, %v", f, ok)
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		in   any
		want heapcodec.Number
		ok   bool
	}{
		{int(-5), heapcodec.IntNumber(-5), true},
		{int8(-8), heapcodec.IntNumber(-8), true},
		{uint16(16), heapcodec.IntNumber(16), true},
		{uint64(math.MaxUint64), heapcodec.UintNumber(math.MaxUint64), true},
		{float32(0.5), heapcodec.FloatNumber(0.5), true},
		{2.25, heapcodec.FloatNumber(2.25), true},
		{"7", heapcodec.Number{}, false},
	}

	for _, tt := range tests {
		got, ok := FromAny(tt.in)
		if ok != tt.ok || (ok && !got.Equal(tt.want)) {
			t.Errorf("FromAny(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDynamic(t *testing.T) {
	if v, ok := Dynamic(heapcodec.IntNumber(-1)).(int64); !ok || v != -1 {
		t.Errorf("Dynamic(int) = %#v", Dynamic(heapcodec.IntNumber(-1)))
	}
	if v, ok := Dynamic(heapcodec.UintNumber(math.MaxUint64)).(uint64); !ok || v != math.MaxUint64 {
		t.Errorf("Dynamic(uint) = %#v", Dynamic(heapcodec.UintNumber(math.MaxUint64)))
	}
	if v, ok := Dynamic(heapcodec.FloatNumber(1.5)).(float64); !ok || v != 1.5 {
		t.Errorf("Dynamic(float) = %#v", Dynamic(heapcodec.FloatNumber(1.5)))
	}
}

package numconv

import (
	"math"

	"github.com/wippyai/heapcodec"
)

// ToInt converts n to a signed integer of the given bit width.
func ToInt(n heapcodec.Number, bits int) (int64, bool) {
	v, ok := n.Int64()
	if !ok {
		return 0, false
	}
	if bits < 64 {
		lo := int64(-1) << (bits - 1)
		hi := -lo - 1
		if v < lo || v > hi {
			return 0, false
		}
	}
	return v, true
}

// ToUint converts n to an unsigned integer of the given bit width.
func ToUint(n heapcodec.Number, bits int) (uint64, bool) {
	v, ok := n.Uint64()
	if !ok {
		return 0, false
	}
	if bits < 64 && v > uint64(1)<<bits-1 {
		return 0, false
	}
	return v, true
}

// ToFloat converts n to a float of the given bit width. Integers convert
// with the usual float rounding; float64 values outside float32 range fail.
func ToFloat(n heapcodec.Number, bits int) (float64, bool) {
	f := n.Float64()
	if bits == 32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return f, true
}

// FromAny builds a Number from any Go numeric value. Named numeric types
// are not unwrapped; callers use reflection for those.
func FromAny(value any) (heapcodec.Number, bool) {
	switch v := value.(type) {
	case int:
		return heapcodec.IntNumber(int64(v)), true
	case int8:
		return heapcodec.IntNumber(int64(v)), true
	case int16:
		return heapcodec.IntNumber(int64(v)), true
	case int32:
		return heapcodec.IntNumber(int64(v)), true
	case int64:
		return heapcodec.IntNumber(v), true
	case uint:
		return heapcodec.UintNumber(uint64(v)), true
	case uint8:
		return heapcodec.UintNumber(uint64(v)), true
	case uint16:
		return heapcodec.UintNumber(uint64(v)), true
	case uint32:
		return heapcodec.UintNumber(uint64(v)), true
	case uint64:
		return heapcodec.UintNumber(v), true
	case float32:
		return heapcodec.FloatNumber(float64(v)), true
	case float64:
		return heapcodec.FloatNumber(v), true
	}
	return heapcodec.Number{}, false
}

// Dynamic returns the natural Go value for n: int64 for signed integers,
// uint64 for integers above math.MaxInt64, float64 otherwise.
func Dynamic(n heapcodec.Number) any {
	switch n.Kind() {
	case heapcodec.NumberInt:
		v, _ := n.Int64()
		return v
	case heapcodec.NumberUint:
		v, _ := n.Uint64()
		return v
	default:
		return n.Float64()
	}
}

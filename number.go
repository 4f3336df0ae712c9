package heapcodec

import (
	"math"
	"strconv"
)

// NumberKind records which representation a Number holds.
type NumberKind uint8

const (
	NumberInt NumberKind = iota
	NumberUint
	NumberFloat
)

func (k NumberKind) String() string {
	switch k {
	case NumberInt:
		return "int"
	case NumberUint:
		return "uint"
	case NumberFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Number is the store's numeric scalar. It holds any fixed-width integer or
// float exactly: signed values as int64, unsigned values that do not fit
// int64 as uint64, and floats as float64.
type Number struct {
	bits uint64
	kind NumberKind
}

// IntNumber returns a Number holding a signed integer.
func IntNumber(v int64) Number {
	return Number{kind: NumberInt, bits: uint64(v)}
}

// UintNumber returns a Number holding an unsigned integer. Values that fit
// int64 are stored as NumberInt so equal integers compare equal.
func UintNumber(v uint64) Number {
	if v <= math.MaxInt64 {
		return Number{kind: NumberInt, bits: v}
	}
	return Number{kind: NumberUint, bits: v}
}

// FloatNumber returns a Number holding a float.
func FloatNumber(v float64) Number {
	return Number{kind: NumberFloat, bits: math.Float64bits(v)}
}

func (n Number) Kind() NumberKind {
	return n.kind
}

// Int64 returns the value as int64 when it is exactly representable.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case NumberInt:
		return int64(n.bits), true
	case NumberUint:
		return 0, false
	case NumberFloat:
		f := math.Float64frombits(n.bits)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// Uint64 returns the value as uint64 when it is exactly representable.
func (n Number) Uint64() (uint64, bool) {
	switch n.kind {
	case NumberInt:
		i := int64(n.bits)
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	case NumberUint:
		return n.bits, true
	case NumberFloat:
		f := math.Float64frombits(n.bits)
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, false
		}
		return uint64(f), true
	}
	return 0, false
}

// Float64 returns the value as float64. Integers beyond 2^53 lose
// precision.
func (n Number) Float64() float64 {
	switch n.kind {
	case NumberInt:
		return float64(int64(n.bits))
	case NumberUint:
		return float64(n.bits)
	default:
		return math.Float64frombits(n.bits)
	}
}

func (n Number) String() string {
	switch n.kind {
	case NumberInt:
		return strconv.FormatInt(int64(n.bits), 10)
	case NumberUint:
		return strconv.FormatUint(n.bits, 10)
	default:
		return strconv.FormatFloat(math.Float64frombits(n.bits), 'g', -1, 64)
	}
}

// Equal reports whether both numbers hold the same value and kind.
func (n Number) Equal(o Number) bool {
	return n.kind == o.kind && n.bits == o.bits
}

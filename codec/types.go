package codec

import (
	"github.com/wippyai/heapcodec/codec/internal/types"
)

type TypeKind = types.Kind

const (
	KindBool     = types.KindBool
	KindInt8     = types.KindInt8
	KindInt16    = types.KindInt16
	KindInt32    = types.KindInt32
	KindInt64    = types.KindInt64
	KindInt      = types.KindInt
	KindUint8    = types.KindUint8
	KindUint16   = types.KindUint16
	KindUint32   = types.KindUint32
	KindUint64   = types.KindUint64
	KindUint     = types.KindUint
	KindFloat32  = types.KindFloat32
	KindFloat64  = types.KindFloat64
	KindChar     = types.KindChar
	KindString   = types.KindString
	KindBytes    = types.KindBytes
	KindUnit     = types.KindUnit
	KindOption   = types.KindOption
	KindSequence = types.KindSequence
	KindTuple    = types.KindTuple
	KindMap      = types.KindMap
	KindStruct   = types.KindStruct
	KindEnum     = types.KindEnum
	KindAny      = types.KindAny
	KindCustom   = types.KindCustom
)

type VariantKind = types.VariantKind

const (
	VariantUnit    = types.VariantUnit
	VariantNewtype = types.VariantNewtype
	VariantTuple   = types.VariantTuple
	VariantStruct  = types.VariantStruct
)

type CompiledType = types.CompiledType
type CompiledField = types.Field
type CompiledVariant = types.Variant

// Char marks a rune-valued field as a single store Char rather than a
// Number.
type Char rune

// Tuple, embedded in a struct, makes the struct encode positionally as a
// fixed-arity tuple instead of a field list.
type Tuple struct{}

// Pair is the dynamic form of a store Pair that is not part of a map.
type Pair struct {
	Key   any
	Value any
}

// Range is the dynamic form of a store Range.
type Range struct {
	Start any
	End   any
}

package types

type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindBytes
	KindUnit
	KindOption
	KindSequence
	KindTuple
	KindMap
	KindStruct
	KindEnum
	KindAny
	KindCustom
)

var kindNames = [...]string{
	KindBool:     "bool",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindInt:      "int",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindUint:     "uint",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindChar:     "char",
	KindString:   "string",
	KindBytes:    "bytes",
	KindUnit:     "unit",
	KindOption:   "option",
	KindSequence: "sequence",
	KindTuple:    "tuple",
	KindMap:      "map",
	KindStruct:   "struct",
	KindEnum:     "enum",
	KindAny:      "any",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInteger reports whether k is one of the fixed-width integer kinds.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUint
}

func (k Kind) IsSigned() bool {
	return k >= KindInt8 && k <= KindInt
}

// VariantKind is the payload shape of an enum variant.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewtype
	VariantTuple
	VariantStruct
)

var variantKindNames = [...]string{
	VariantUnit:    "unit",
	VariantNewtype: "newtype",
	VariantTuple:   "tuple",
	VariantStruct:  "struct",
}

func (k VariantKind) String() string {
	if int(k) < len(variantKindNames) {
		return variantKindNames[k]
	}
	return "unknown"
}

// Package codec converts Go values to and from a runtime value store.
//
// The Encoder walks a Go value with reflection and builds store values
// through a heapcodec.Builder. The Decoder reads a handle back into a Go
// value, into a dynamic any, or into a shape described by a WIT type.
// Go types are compiled once into a CompiledType and cached per Compiler.
//
// # Type Mapping
//
//	Go                          Store
//	──────────────────────────────────────────────────────────
//	bool                        True / False
//	intN, uintN, floatN         Number
//	codec.Char                  Char
//	string                      CharList
//	[]byte                      ByteList
//	*T                          Unit when nil, else T (see OptionalPolicy)
//	[]T                         List, items not associative
//	[N]T, struct{codec.Tuple}   List of fixed arity
//	map[K]V                     List of Pair(Symbol(key), value), sorted keys
//	struct                      List of Pair(Symbol(field), value)
//	empty struct                Unit
//	registered interface        enum discriminant, or List [disc, payload]
//	any                         dynamic type of the value
//	Marshaler / Unmarshaler     whatever the type builds
//
// # Enums
//
// Go has no sum types, so enums are interfaces registered with their
// variants:
//
//	type Shape interface{ isShape() }
//	type Circle struct{ R float64 }
//	type Empty struct{}
//
//	codec.Register[Shape](codec.DefaultCompiler(), "Shape",
//	    codec.Case[Circle]("Circle"),
//	    codec.Case[Empty]("Empty"),
//	)
//
// A unit variant encodes as its discriminant alone. Other variants encode as
// a two-item List of the discriminant and the payload. The discriminant is
// Symbol("Shape::Circle"), Symbol("Circle") or Number(0) depending on
// VariantNaming.
//
// # Sequence Resolution
//
// Wherever a sequence is expected the decoder accepts a List, a
// Concatenation (flattened left to right) or a Slice over either (inclusive
// range). Any other value is read as a one-item sequence. Decoder.Items
// exposes this resolution directly.
//
// # Struct Tags
//
//	type User struct {
//	    Name  string `heap:"name"`
//	    Token string `heap:"-"`
//	}
//
// Decoding matches field names exactly first, then case-insensitively.
// Unknown fields and type metadata entries are skipped.
package codec

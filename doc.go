// Package heapcodec defines the value store contract used by the codec.
//
// A runtime value store is a heap of tagged values addressed by opaque
// handles. The codec writes Go values into a store and reads them back
// without either side knowing the other's concrete type definitions.
//
// # Architecture Overview
//
//	heapcodec/          Root package with Store, Handle, Tag and Number
//	├── codec/          Encoder, Decoder, Compiler and Options
//	├── memstore/       In-memory reference Store with snapshots
//	├── errors/         Structured error types for debugging
//	└── cmd/heapview/   Encode documents into a store and inspect the heap
//
// # Value Tags
//
//	Tag             Content
//	──────────────────────────────────────────────
//	Unit            absence of value
//	True/False      booleans
//	Number          integer or float scalar
//	Char            one Unicode scalar
//	CharList        realized string
//	ByteList        raw bytes
//	Symbol          interned name
//	Pair            key = value
//	List            ordered handles, each flagged associative or not
//	Concatenation   left <> right, a lazily joined sequence
//	Range           start..end (inclusive)
//	Slice           source ~ range, a view over a List or Concatenation
//
// # Quick Start
//
//	store := memstore.New()
//
//	h, err := codec.Marshal(store, Point{X: 1, Y: 2}, codec.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var p Point
//	if err := codec.Unmarshal(store, h, &p, codec.DefaultOptions()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Numbers
//
// Number holds any fixed-width integer or float exactly. Signed values and
// unsigned values up to MaxInt64 are kept as int64, larger unsigned values
// as uint64 and floats as float64. Conversions to a narrower width are
// checked by the decoder.
package heapcodec

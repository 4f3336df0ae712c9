// Package types defines the compiled type structures used by the codec.
//
// CompiledType records how a Go type maps onto store values: its shape
// Kind, element and key types, struct fields with their reflect index
// paths, and enum variants. Compiling once per Go type keeps reflection
// lookups out of the encode and decode paths.
//
// # Key Types
//
//   - CompiledType: cached shape metadata for one Go type
//   - Kind: shape discriminator (primitive, sequence, struct, enum, etc.)
//   - VariantKind: payload shape of an enum variant
//
// This package is internal to the codec.
package types

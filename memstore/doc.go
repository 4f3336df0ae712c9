// Package memstore is an in-memory implementation of heapcodec.Store.
//
// It keeps every value in a single slice indexed by handle, interns
// symbols, and supports nested char list, byte list and list builds.
// Unit, True and False are preallocated at handles 0, 1 and 2.
//
// # Realization
//
// CharListFrom renders any value as text:
//
//	Symbol          its name
//	Number          decimal text
//	Concatenation   realized leaves, left to right
//	Slice           selected items of a List or Concatenation, or the
//	                selected characters of a CharList
//	List            realized items joined without separator
//
// # Snapshots
//
// WriteSnapshot stores the heap as a zstd-compressed CBOR document and
// ReadSnapshot restores it with identical handles, so handles saved
// alongside a snapshot remain valid.
//
// Store is not safe for concurrent use.
package memstore

package codec

import (
	"reflect"

	"github.com/wippyai/heapcodec"
)

// Marshaler is implemented by types that build their own store value.
type Marshaler interface {
	MarshalHeap(e *Encoder) (heapcodec.Handle, error)
}

// Unmarshaler is implemented by types that read themselves from a store
// value. UnmarshalHeap is called on a pointer to the target.
type Unmarshaler interface {
	UnmarshalHeap(d *Decoder, h heapcodec.Handle) error
}

// Marshal encodes v into store using the default compiler.
func Marshal(store heapcodec.Builder, v any, opts Options) (heapcodec.Handle, error) {
	return NewEncoder(store, opts).Encode(v)
}

// MarshalAs encodes v as a value of type t using the default compiler.
// See Encoder.EncodeAs.
func MarshalAs(store heapcodec.Builder, v any, t reflect.Type, opts Options) (heapcodec.Handle, error) {
	return NewEncoder(store, opts).EncodeAs(v, t)
}

// Unmarshal decodes the value at h into the value pointed to by out using
// the default compiler.
func Unmarshal(store heapcodec.Store, h heapcodec.Handle, out any, opts Options) error {
	return NewDecoder(store, opts).Decode(h, out)
}

package codec

import (
	"strings"

	"github.com/wippyai/heapcodec/errors"
)

// OptionalPolicy selects how nil pointers and their present values encode.
type OptionalPolicy uint8

const (
	// OptionalUnitValue encodes nil as Unit and a present value bare.
	OptionalUnitValue OptionalPolicy = iota
	// OptionalSymbolPair encodes nil as Pair(none, Unit) and a present value
	// as Pair(some, value).
	OptionalSymbolPair
)

// StructTyping selects whether structs carry their type name.
type StructTyping uint8

const (
	StructTypingExcluded StructTyping = iota
	StructTypingIncluded
)

// VariantNaming selects the form of enum discriminants.
type VariantNaming uint8

const (
	// VariantNameFull writes Symbol("Enum::Variant").
	VariantNameFull VariantNaming = iota
	// VariantNameShort writes Symbol("Variant").
	VariantNameShort
	// VariantNameIndex writes Number(ordinal).
	VariantNameIndex
)

// DefaultMaxDepth bounds decode and encode nesting.
const DefaultMaxDepth = 512

// MetadataKey is the symbol under which struct type names are stored when
// struct typing is enabled.
const MetadataKey = "__type__"

const (
	symbolNone = "none"
	symbolSome = "some"
)

// Options configures one encode or decode session. The zero value is not
// valid for MaxDepth; use DefaultOptions.
type Options struct {
	Optional      OptionalPolicy
	StructTyping  StructTyping
	VariantNaming VariantNaming
	MaxDepth      int
}

// DefaultOptions returns unit-value optionals, no struct typing, full
// variant names and DefaultMaxDepth.
func DefaultOptions() Options {
	return Options{
		Optional:      OptionalUnitValue,
		StructTyping:  StructTypingExcluded,
		VariantNaming: VariantNameFull,
		MaxDepth:      DefaultMaxDepth,
	}
}

// WithOptional returns a copy of o using policy p for optional values.
func (o Options) WithOptional(p OptionalPolicy) Options {
	o.Optional = p
	return o
}

// WithStructTyping returns a copy of o with struct type-tagging set to s.
func (o Options) WithStructTyping(s StructTyping) Options {
	o.StructTyping = s
	return o
}

// WithVariantNaming returns a copy of o writing enum discriminants per v.
func (o Options) WithVariantNaming(v VariantNaming) Options {
	o.VariantNaming = v
	return o
}

// WithMaxDepth returns a copy of o with the nesting limit set to depth.
// Values of zero or less fall back to DefaultMaxDepth.
func (o Options) WithMaxDepth(depth int) Options {
	o.MaxDepth = depth
	return o
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (p OptionalPolicy) String() string {
	switch p {
	case OptionalUnitValue:
		return "unit"
	case OptionalSymbolPair:
		return "symbol"
	default:
		return "unknown"
	}
}

func (s StructTyping) String() string {
	switch s {
	case StructTypingExcluded:
		return "exclude"
	case StructTypingIncluded:
		return "include"
	default:
		return "unknown"
	}
}

func (v VariantNaming) String() string {
	switch v {
	case VariantNameFull:
		return "full"
	case VariantNameShort:
		return "short"
	case VariantNameIndex:
		return "index"
	default:
		return "unknown"
	}
}

// ParseOptional accepts "unit" or "symbol".
func ParseOptional(s string) (OptionalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unit", "unit-value":
		return OptionalUnitValue, nil
	case "symbol", "symbol-pair", "pair":
		return OptionalSymbolPair, nil
	}
	return 0, errors.NotFound(errors.PhaseConfig, "optional policy", s)
}

// ParseStructTyping accepts "exclude" or "include" (also "off"/"on").
func ParseStructTyping(s string) (StructTyping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclude", "excluded", "off", "false":
		return StructTypingExcluded, nil
	case "include", "included", "on", "true":
		return StructTypingIncluded, nil
	}
	return 0, errors.NotFound(errors.PhaseConfig, "struct typing", s)
}

// ParseVariantNaming accepts "full", "short" or "index".
func ParseVariantNaming(s string) (VariantNaming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return VariantNameFull, nil
	case "short":
		return VariantNameShort, nil
	case "index":
		return VariantNameIndex, nil
	}
	return 0, errors.NotFound(errors.PhaseConfig, "variant naming", s)
}

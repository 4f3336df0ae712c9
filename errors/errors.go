package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // Go type compilation
	PhaseEncode  Phase = "encode"  // Go to store
	PhaseDecode  Phase = "decode"  // store to Go
	PhaseStore   Phase = "store"   // value store operations
	PhaseConfig  Phase = "config"  // option parsing
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindOverflow       Kind = "overflow"
	KindNilPointer     Kind = "nil_pointer"
	KindInvalidVariant Kind = "invalid_variant"
	KindArity          Kind = "arity"
	KindInvalidEntry   Kind = "invalid_entry"
	KindNotFound       Kind = "not_found"
	KindRegistration   Kind = "registration"
	KindStore          Kind = "store"
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	GoType    string
	StoreType string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.StoreType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.StoreType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", store type ")
			b.WriteString(e.StoreType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("store type ")
			b.WriteString(e.StoreType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.StoreType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Message returns the descriptive message, or "" when the error wraps a
// store failure.
func (e *Error) Message() string {
	if e.Cause != nil {
		return ""
	}
	return e.Detail
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// StoreType sets the store tag name
func (b *Builder) StoreType(t string) *Builder {
	b.err.StoreType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnexpectedTag creates an "expected X, found Y" error for a decoded value
// whose tag does not fit the requested shape.
func UnexpectedTag(path []string, expected string, found fmt.Stringer) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindTypeMismatch,
		Path:      path,
		StoreType: found.String(),
		Detail:    fmt.Sprintf("expected %s, found %s", expected, found),
	}
}

// StoreFailure wraps an error returned by the value store. The original
// error stays reachable through errors.Unwrap and errors.Is.
func StoreFailure(phase Phase, path []string, op string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStore,
		Path:   path,
		Detail: op,
		Cause:  cause,
	}
}

// Arity creates a fixed-arity mismatch error
func Arity(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Path:   path,
		Detail: fmt.Sprintf("expected %d items, found %d", want, got),
		Value:  got,
	}
}

// InvalidEntry creates an error for a map or struct entry that is not a Pair
func InvalidEntry(path []string, index int, found fmt.Stringer) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindInvalidEntry,
		Path:      path,
		StoreType: found.String(),
		Detail:    fmt.Sprintf("expected Pair at entry %d, found %s", index, found),
		Value:     index,
	}
}

// MissingSeparator creates an error for an enum discriminant without "::"
func MissingSeparator(path []string, discriminant string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidVariant,
		Path:   path,
		Detail: fmt.Sprintf("discriminant %q has no \"::\" separator", discriminant),
		Value:  discriminant,
	}
}

// UnknownVariant creates an error for a variant name or ordinal the enum
// does not define
func UnknownVariant(path []string, variant any, enumType string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidVariant,
		Path:   path,
		GoType: enumType,
		Detail: fmt.Sprintf("unknown variant %v", variant),
		Value:  variant,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates an enum registration error
func Registration(goType, detail string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindRegistration,
		GoType: goType,
		Detail: detail,
	}
}

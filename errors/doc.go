// Package errors provides structured error types for the heapcodec library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: value path, Go type and store tag names,
// and cause chain.
//
// An Error carries one of two payloads: a wrapped store failure (Cause) or a
// descriptive message (Detail). Store failures keep the store's own error
// reachable through errors.Unwrap:
//
//	err := errors.StoreFailure(errors.PhaseEncode, path, "end list", storeErr)
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("uint8").
//		StoreType("CharList").
//		Detail("expected Number, found CharList").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedTag(path, "Number", heapcodec.TagCharList)
//	err := errors.Arity(errors.PhaseDecode, path, 3, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

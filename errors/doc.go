// Package errors provides structured error types for the containers library.
//
// Errors are categorized by Op (the container operation that failed) and
// Kind (error category). Full/empty/out-of-range conditions are routine
// outcomes and are returned as values, never panics.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.OpResize, errors.KindInvalidArgument).
//		Value(newCapacity).
//		Detail("shrinking the buffer is not allowed").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Full(errors.OpPush, errors.KindStackFull, capacity)
//	err := errors.OutOfRange(errors.OpRef, index, count)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target *Error with an empty Op matches on Kind alone:
//
//	errors.Is(err, &errors.Error{Kind: errors.KindStackFull})
package errors

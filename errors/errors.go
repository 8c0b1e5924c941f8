package errors

import (
	"fmt"
	"strings"
)

// Op names the container operation that produced the error
type Op string

const (
	OpCreate     Op = "create"
	OpDestroy    Op = "destroy"
	OpPush       Op = "push"
	OpPop        Op = "pop"
	OpPeek       Op = "peek"
	OpDiscardTop Op = "discard_top"
	OpClear      Op = "clear"
	OpReserve    Op = "reserve"
	OpResize     Op = "resize"
	OpRef        Op = "ref"
	OpSet        Op = "set"
	OpSize       Op = "size"
	OpCapacity   Op = "capacity"
	OpLayout     Op = "layout"
	OpAllocate   Op = "allocate"
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindInvalidStack    Kind = "invalid_stack"
	KindInvalidDarray   Kind = "invalid_darray"
	KindAllocation      Kind = "allocation"
	KindStackFull       Kind = "stack_full"
	KindStackEmpty      Kind = "stack_empty"
	KindBufferFull      Kind = "buffer_full"
	KindBufferEmpty     Kind = "buffer_empty"
	KindOutOfRange      Kind = "out_of_range"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Op     Op
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target matches this error. A target with an empty
// Op matches any operation, so callers can test for a Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && e.Op != t.Op {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err or any error in its chain is an *Error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:   op,
			Kind: kind,
		},
	}
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

// InvalidArgument creates an invalid argument error
func InvalidArgument(op Op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(op Op, bytes uint64, cause error) *Error {
	return &Error{
		Op:     op,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", bytes),
		Cause:  cause,
	}
}

// CapacityOverflow creates an invalid argument error for capacity
// arithmetic that would overflow the platform size type
func CapacityOverflow(op Op, stride, capacity uint64) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidArgument,
		Detail: fmt.Sprintf("capacity too large: %d slots of %d bytes overflows", capacity, stride),
		Value:  capacity,
	}
}

// OutOfRange creates an out of range error
func OutOfRange(op Op, index, count uint64) *Error {
	return &Error{
		Op:     op,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("index %d out of range (count %d)", index, count),
		Value:  index,
	}
}

// NotInitialized creates the invalid-container error for a handle with
// no backing state. kind selects between the stack and darray flavors,
// which stay distinct at the API boundary.
func NotInitialized(op Op, kind Kind, container string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: fmt.Sprintf("%s not initialized", container),
	}
}

// Full creates a container-full error
func Full(op Op, kind Kind, capacity uint64) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: fmt.Sprintf("container full (capacity %d)", capacity),
		Value:  capacity,
	}
}

// Empty creates a container-empty error
func Empty(op Op, kind Kind) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: "container empty",
	}
}

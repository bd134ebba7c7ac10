package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in variable processing the error occurred
type Phase string

const (
	PhaseAllocate  Phase = "allocate"  // variable/buffer allocation
	PhaseResize    Phase = "resize"    // capacity changes
	PhaseRead      Phase = "read"      // wire to host value
	PhaseWrite     Phase = "write"     // host value to wire
	PhaseCopy      Phase = "copy"      // element copy between variables
	PhaseBind      Phase = "bind"      // callback rounds with the call interface
	PhaseLifecycle Phase = "lifecycle" // reference counting and teardown
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation          Kind = "allocation"
	KindArraySizeZero       Kind = "array_size_zero"
	KindArraySizeExceeded   Kind = "array_size_exceeded"
	KindArraySizeTooBig     Kind = "array_size_too_big"
	KindNotSupported        Kind = "not_supported"
	KindBufferTooSmall      Kind = "buffer_too_small"
	KindUnhandledConversion Kind = "unhandled_conversion"
	KindColumnFetch         Kind = "column_fetch"
	KindNoObjectType        Kind = "no_object_type"
	KindInvalidHandle       Kind = "invalid_handle"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	OracleType string
	NativeType string
	Position   uint32
	Code       uint16
	Capacity   uint32
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.OracleType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.OracleType != "" && e.NativeType != "" {
			b.WriteString("oracle type ")
			b.WriteString(e.OracleType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.OracleType != "" {
			b.WriteString("oracle type ")
			b.WriteString(e.OracleType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.OracleType != "" || e.NativeType != "" {
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

// OracleType sets the portable (wire) type name
func (b *Builder) OracleType(t string) *Builder {
	b.err.OracleType = t
	return b
}

// NativeType sets the host representation name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Position sets the array element position
func (b *Builder) Position(pos uint32) *Builder {
	b.err.Position = pos
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

// Convenience constructors for the error kinds callers match on

// AllocationFailed reports a failed buffer or handle allocation
func AllocationFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: what,
		Cause:  cause,
	}
}

// ArraySizeZero reports a requested capacity of zero elements
func ArraySizeZero() *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindArraySizeZero,
		Detail: "max array size must be at least 1",
	}
}

// ArraySizeExceeded reports a position or count beyond the variable capacity
func ArraySizeExceeded(phase Phase, maxArraySize, pos uint32) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindArraySizeExceeded,
		Position: pos,
		Capacity: maxArraySize,
		Detail:   fmt.Sprintf("position %d exceeds array size %d", pos, maxArraySize),
	}
}

// ArraySizeTooBig reports a total buffer volume beyond the addressable limit
func ArraySizeTooBig(maxArraySize uint32) *Error {
	return &Error{
		Phase:    PhaseAllocate,
		Kind:     KindArraySizeTooBig,
		Capacity: maxArraySize,
		Detail:   fmt.Sprintf("array size %d too large for buffer allocation", maxArraySize),
	}
}

// NotSupported reports an operation invalid for the variable's type or mode
func NotSupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotSupported,
		Detail: what,
	}
}

// BufferTooSmall reports a write exceeding the destination capacity
func BufferTooSmall(capacity uint32) *Error {
	return &Error{
		Phase:    PhaseWrite,
		Kind:     KindBufferTooSmall,
		Capacity: capacity,
		Detail:   fmt.Sprintf("value exceeds buffer capacity of %d bytes", capacity),
	}
}

// UnhandledConversion reports a (wire type, host representation) pair with no
// dispatch rule
func UnhandledConversion(phase Phase, oracleType, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnhandledConversion,
		OracleType: oracleType,
		NativeType: nativeType,
	}
}

// ColumnFetch reports a per-element return code from the call interface
func ColumnFetch(pos uint32, code uint16) *Error {
	return &Error{
		Phase:    PhaseRead,
		Kind:     KindColumnFetch,
		Position: pos,
		Code:     code,
		Detail:   fmt.Sprintf("fetch of column at position %d failed with return code %d", pos, code),
	}
}

// NoObjectType reports an object-typed variable created without a descriptor
func NoObjectType() *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindNoObjectType,
		Detail: "object variable requires an object type descriptor",
	}
}

// InvalidHandle reports a dependent handle of the wrong kind or not live
func InvalidHandle(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: what,
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

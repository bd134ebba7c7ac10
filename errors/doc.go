// Package errors provides structured error types for the odpi library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the context callers need for diagnostics:
// oracle/native type names, array position, fetch return code and buffer
// capacity, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseWrite, errors.KindNotSupported).
//		OracleType("number").
//		NativeType("bytes").
//		Detail("cannot stage text into a numeric buffer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BufferTooSmall(capacity)
//	err := errors.ColumnFetch(pos, code)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

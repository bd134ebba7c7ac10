package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseCopy,
				Kind:       KindNotSupported,
				OracleType: "number",
				NativeType: "bytes",
				Detail:     "mismatched native types",
			},
			contains: []string{"[copy]", "not_supported", "number", "bytes", "mismatched native types"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRead,
				Kind:  KindColumnFetch,
			},
			contains: []string{"[read]", "column_fetch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAllocate,
				Kind:   KindAllocation,
				Detail: "allocate lob handle",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[allocate]", "allocation", "allocate lob handle", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseWrite,
		Kind:  KindBufferTooSmall,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:    PhaseRead,
		Kind:     KindColumnFetch,
		Position: 3,
	}

	if !err.Is(&Error{Phase: PhaseRead, Kind: KindColumnFetch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseWrite, Kind: KindColumnFetch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseRead, Kind: KindNotSupported}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseRead, Kind: KindColumnFetch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match same phase and kind")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseWrite, KindUnhandledConversion).
		OracleType("timestamp").
		NativeType("boolean").
		Position(7).
		Detail("no dispatch rule for %s", "pair").
		Cause(cause).
		Build()

	if err.Phase != PhaseWrite || err.Kind != KindUnhandledConversion {
		t.Fatalf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
	}
	if err.OracleType != "timestamp" || err.NativeType != "boolean" {
		t.Errorf("type names not set: %q/%q", err.OracleType, err.NativeType)
	}
	if err.Position != 7 {
		t.Errorf("expected position 7, got %d", err.Position)
	}
	if err.Detail != "no dispatch rule for pair" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"allocation", AllocationFailed(PhaseAllocate, "allocate buffer", nil), PhaseAllocate, KindAllocation},
		{"array size zero", ArraySizeZero(), PhaseAllocate, KindArraySizeZero},
		{"array size exceeded", ArraySizeExceeded(PhaseWrite, 4, 9), PhaseWrite, KindArraySizeExceeded},
		{"array size too big", ArraySizeTooBig(1 << 30), PhaseAllocate, KindArraySizeTooBig},
		{"not supported", NotSupported(PhaseResize, "resize a numeric variable"), PhaseResize, KindNotSupported},
		{"buffer too small", BufferTooSmall(20), PhaseWrite, KindBufferTooSmall},
		{"unhandled conversion", UnhandledConversion(PhaseRead, "raw", "double"), PhaseRead, KindUnhandledConversion},
		{"column fetch", ColumnFetch(2, 1406), PhaseRead, KindColumnFetch},
		{"no object type", NoObjectType(), PhaseAllocate, KindNoObjectType},
		{"invalid handle", InvalidHandle(PhaseWrite, "check lob"), PhaseWrite, KindInvalidHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("expected phase %v, got %v", tt.phase, tt.err.Phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
		})
	}

	if got := BufferTooSmall(20).Capacity; got != 20 {
		t.Errorf("expected capacity 20, got %d", got)
	}
	cf := ColumnFetch(2, 1406)
	if cf.Position != 2 || cf.Code != 1406 {
		t.Errorf("column fetch context lost: pos=%d code=%d", cf.Position, cf.Code)
	}
}

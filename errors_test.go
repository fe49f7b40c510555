package winograd

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		checkFn  func(error) bool
		sentinel error
	}{
		{
			name:     "Shape Error",
			err:      NewShapeError("FilterTransform", "W must be [Ci,3,3,Co]"),
			wantType: ErrTypeShape,
			wantOp:   "FilterTransform",
			checkFn:  IsShapeError,
			sentinel: ErrShape,
		},
		{
			name:     "Capacity Error",
			err:      NewCapacityError("Contract", "N=%d exceeds %d", 33, 32),
			wantType: ErrTypeCapacity,
			wantOp:   "Contract",
			checkFn:  IsCapacityError,
			sentinel: ErrCapacity,
		},
		{
			name:     "Channel Mismatch Error",
			err:      NewChannelMismatchError("ContractBlocked", 3, 4),
			wantType: ErrTypeChannelMismatch,
			wantOp:   "ContractBlocked",
			checkFn:  IsChannelMismatchError,
			sentinel: ErrChannelMismatch,
		},
		{
			name:     "Invalid Arg Error",
			err:      NewInvalidArgError("Forward", "unknown method"),
			wantType: ErrTypeInvalidArg,
			wantOp:   "Forward",
			checkFn:  func(err error) bool { return errors.Is(err, ErrInvalidArg) },
			sentinel: ErrInvalidArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var werr *Error
			if !errors.As(tt.err, &werr) {
				t.Fatalf("Expected *Error, got %T", tt.err)
			}
			if werr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", werr.Type, tt.wantType)
			}
			if werr.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", werr.Op, tt.wantOp)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if !errors.Is(fmt.Errorf("wrapped: %w", tt.err), tt.sentinel) {
				t.Errorf("errors.Is through a wrap should match %v", tt.sentinel)
			}
			if !strings.Contains(tt.err.Error(), tt.wantOp) {
				t.Errorf("Error string %q lacks op", tt.err.Error())
			}
		})
	}
}

func TestErrorSentinelsDistinct(t *testing.T) {
	err := NewShapeError("PackImage", "bad")
	if errors.Is(err, ErrCapacity) || errors.Is(err, ErrChannelMismatch) || errors.Is(err, ErrInvalidArg) {
		t.Error("Shape error matched another sentinel")
	}
	if IsShapeError(nil) {
		t.Error("nil is not a shape error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := &Error{Type: ErrTypeShape, Op: "Test", Message: "wrapped error", Err: baseErr}

	if wrappedErr.Unwrap() != baseErr {
		t.Errorf("Unwrap() = %v, want %v", wrappedErr.Unwrap(), baseErr)
	}
	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
	if !strings.Contains(wrappedErr.Error(), "caused by: base error") {
		t.Errorf("Error() = %q", wrappedErr.Error())
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeShape, "Shape"},
		{ErrTypeCapacity, "Capacity"},
		{ErrTypeChannelMismatch, "ChannelMismatch"},
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

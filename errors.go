package winograd

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Tensor dimensions do not match what the operation requires
	ErrTypeShape ErrorType = iota
	// Requested batch or channel count exceeds the 32-aligned capacity
	ErrTypeCapacity
	// Input channel counts of U and V differ
	ErrTypeChannelMismatch
	// Invalid argument errors
	ErrTypeInvalidArg
)

// Error is a structured error with context. All transform and contraction
// errors are deterministic; retrying reproduces them.
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("winograd %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("winograd %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Type == e.Type
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeShape:
		return "Shape"
	case ErrTypeCapacity:
		return "Capacity"
	case ErrTypeChannelMismatch:
		return "ChannelMismatch"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is
var (
	ErrShape           = &Error{Type: ErrTypeShape}
	ErrCapacity        = &Error{Type: ErrTypeCapacity}
	ErrChannelMismatch = &Error{Type: ErrTypeChannelMismatch}
	ErrInvalidArg      = &Error{Type: ErrTypeInvalidArg}
)

// NewShapeError creates a shape error
func NewShapeError(op string, format string, args ...interface{}) error {
	return &Error{Type: ErrTypeShape, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NewCapacityError creates a capacity error
func NewCapacityError(op string, format string, args ...interface{}) error {
	return &Error{Type: ErrTypeCapacity, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NewChannelMismatchError creates a channel mismatch error
func NewChannelMismatchError(op string, filterChannels, imageChannels int) error {
	return &Error{
		Type:    ErrTypeChannelMismatch,
		Op:      op,
		Message: fmt.Sprintf("filter has %d input channels, image has %d", filterChannels, imageChannels),
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, format string, args ...interface{}) error {
	return &Error{Type: ErrTypeInvalidArg, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsShapeError checks if an error is a shape error
func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape)
}

// IsCapacityError checks if an error is a capacity error
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrCapacity)
}

// IsChannelMismatchError checks if an error is a channel mismatch error
func IsChannelMismatchError(err error) bool {
	return errors.Is(err, ErrChannelMismatch)
}

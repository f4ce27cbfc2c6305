package fragment

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidFragment = errors.New("invalid fragment")
	ErrTotalMismatch   = errors.New("fragment total disagrees with session")
)

// FragmentError describes a fragment the assembler refused
type FragmentError struct {
	Op      string // Operation that failed (e.g. "AddFragment")
	Session uint64
	Index   uint64
	Cause   error
}

// Error implements the error interface.
func (e *FragmentError) Error() string {
	return fmt.Sprintf("%s session %d fragment %d: %v", e.Op, e.Session, e.Index, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FragmentError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches the cause.
func (e *FragmentError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// IsRejected reports whether err is a refused fragment of any kind
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidFragment) || errors.Is(err, ErrTotalMismatch)
}

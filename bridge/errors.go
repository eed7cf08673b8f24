package bridge

import (
	"errors"
	"fmt"
)

// ErrContextUsed reports an execution context being acquired for a
// second invocation. Contexts serve exactly one call; reuse is a bug in
// the calling code, not an engine fault, and is surfaced immediately.
var ErrContextUsed = errors.New("execution context already used")

// OperationError wraps a fault the engine reported through its normal
// error channel. The wrapping keeps "the operation failed" apart from
// "the bridge malfunctioned" once the error has crossed the runtime
// boundary.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// AbortError wraps a trap, crash or panic from the engine side that
// cannot be read as a returned error value.
type AbortError struct {
	Op    string
	Cause error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("operation %s aborted: %v", e.Op, e.Cause)
}

func (e *AbortError) Unwrap() error { return e.Cause }

// NewAbort marks err as an unrecoverable abort of op.
func NewAbort(op string, err error) *AbortError {
	return &AbortError{Op: op, Cause: err}
}

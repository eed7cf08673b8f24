package bridge

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Process exit statuses. ExitFailure is reserved for faults the engine
// reported through its normal error channel; ExitAbort for traps and
// panics that never produced a value.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitAbort   = 2
)

// Operation is one named entry point of the native engine.
// Implementations run to completion exactly once per Run call and report
// faults through the returned error; they never call os.Exit themselves.
type Operation interface {
	// Name identifies the operation ("main", "usage", ...). Used in
	// diagnostics and error wrapping.
	Name() string

	// Run drives the operation to completion. A nil error means the
	// operation produced a value; Result.Code carries the exit status
	// embedded in that value (0 for plain success). An *AbortError
	// return means the engine crashed rather than failed.
	Run(ctx context.Context) (*Result, error)
}

// Result is the value side of a completed operation.
type Result struct {
	Code     int
	Output   string
	Duration time.Duration
}

// Kind discriminates the three Outcome flavors.
type Kind int

const (
	KindSuccess Kind = iota
	KindFailure
	KindAbort
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindAbort:
		return "abort"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the normalized result of one bridged invocation. It is
// built once by Invoke and read once by the exit translation in the
// caller; it is never mutated after construction.
type Outcome struct {
	kind     Kind
	code     int
	output   string
	duration time.Duration
	err      error
}

// Success wraps a completed operation value. A nil result is treated as
// a plain zero exit.
func Success(res *Result) Outcome {
	if res == nil {
		res = &Result{}
	}
	return Outcome{
		kind:     KindSuccess,
		code:     res.Code,
		output:   res.Output,
		duration: res.Duration,
	}
}

// Failure wraps a fault the engine reported through its error channel.
func Failure(err error) Outcome {
	return Outcome{kind: KindFailure, err: err}
}

// Abort wraps a trap or panic that could not be interpreted as a value.
func Abort(err error) Outcome {
	return Outcome{kind: KindAbort, err: err}
}

func (o Outcome) Kind() Kind              { return o.kind }
func (o Outcome) Output() string          { return o.output }
func (o Outcome) Duration() time.Duration { return o.duration }

// Err returns the cause for failure and abort outcomes, nil for success.
func (o Outcome) Err() error { return o.err }

// ExitCode maps the outcome to a process exit status. The mapping is a
// pure function of the outcome: the same Outcome always yields the same
// status.
func (o Outcome) ExitCode() int {
	switch o.kind {
	case KindSuccess:
		return o.code
	case KindAbort:
		return ExitAbort
	default:
		return ExitFailure
	}
}

// Diagnostic writes a human-readable description of a failed outcome to
// w. Success writes nothing; failure and abort always write a non-empty
// line, even when the cause carries no message.
func (o Outcome) Diagnostic(w io.Writer) {
	switch o.kind {
	case KindSuccess:
		return
	case KindAbort:
		cause := "unknown cause"
		if o.err != nil {
			cause = o.err.Error()
		}
		fmt.Fprintf(w, "fatal: %s\n", cause)
	default:
		cause := "operation failed"
		if o.err != nil {
			cause = o.err.Error()
		}
		fmt.Fprintf(w, "error: %s\n", cause)
	}
}

package guest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/tetratelabs/wazero/sys"
)

// Engine entry points. The set is enumerated on purpose: callers get a
// stable, auditable list of operations rather than whatever the module
// happens to export.
const (
	// OpMain runs the engine CLI with pass-through arguments. The
	// guest's exit code becomes the outcome code, verbatim.
	OpMain = "main"

	// OpUsage queries storage usage. The engine writes the usage record
	// as JSON on stdout; the decoded value's representation becomes the
	// outcome output.
	OpUsage = "usage"

	// OpError always fails with a reported error. It exists to exercise
	// the recoverable-failure path end to end without touching the
	// engine.
	OpError = "error"
)

// Operations lists every operation name Context.Operation accepts.
var Operations = []string{OpMain, OpUsage, OpError}

// Operation resolves one of the enumerated engine entry points. The
// returned operation runs inside this context exactly once; resolving is
// cheap and does not touch the guest.
func (c *Context) Operation(name string, args ...string) (bridge.Operation, error) {
	switch name {
	case OpMain:
		return &mainOp{ec: c, args: args}, nil
	case OpUsage:
		return &usageOp{ec: c}, nil
	case OpError:
		return &errorOp{ec: c}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q (have %v)", name, Operations)
	}
}

type mainOp struct {
	ec   *Context
	args []string
}

func (o *mainOp) Name() string { return OpMain }

func (o *mainOp) Run(ctx context.Context) (*bridge.Result, error) {
	if err := o.ec.acquire(); err != nil {
		return nil, err
	}
	start := time.Now()

	modCfg := o.ec.moduleConfig().
		WithStdout(o.ec.stdout).
		WithStderr(o.ec.stderr).
		WithArgs(append([]string{"r2d2"}, o.args...)...)

	_, err := o.ec.runtime.InstantiateModule(ctx, o.ec.compiled, modCfg)
	return classify(ctx, o.Name(), err, time.Since(start), "")
}

type usageOp struct {
	ec *Context
}

func (o *usageOp) Name() string { return OpUsage }

func (o *usageOp) Run(ctx context.Context) (*bridge.Result, error) {
	if err := o.ec.acquire(); err != nil {
		return nil, err
	}
	start := time.Now()

	var stdout bytes.Buffer
	modCfg := o.ec.moduleConfig().
		WithStdout(&stdout).
		WithStderr(o.ec.stderr).
		WithArgs("r2d2", "usage")

	_, err := o.ec.runtime.InstantiateModule(ctx, o.ec.compiled, modCfg)
	res, err := classify(ctx, o.Name(), err, time.Since(start), "")
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, fmt.Errorf("usage query exited with code %d", res.Code)
	}

	usage, err := ParseUsage(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	res.Output = usage.String()
	return res, nil
}

// errorOp reports a failure without running the guest. It still claims
// the context so the one-context-one-call rule holds on this path too.
type errorOp struct {
	ec *Context
}

func (o *errorOp) Name() string { return OpError }

func (o *errorOp) Run(ctx context.Context) (*bridge.Result, error) {
	if err := o.ec.acquire(); err != nil {
		return nil, err
	}
	return nil, errors.New("something went wrong mate")
}

// classify folds the three ways a guest run can end into the bridge's
// taxonomy. Deadline and cancellation are checked before the exit error:
// wazero reports a context-closed guest through an exit error too, and
// that must not be mistaken for an engine-chosen code.
func classify(ctx context.Context, op string, err error, d time.Duration, output string) (*bridge.Result, error) {
	res := &bridge.Result{Output: output, Duration: d}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("engine stopped: %w", ctxErr)
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		res.Code = int(exitErr.ExitCode())
		return res, nil
	}

	return nil, bridge.NewAbort(op, err)
}

// Package launcher is the host entry point: it owns the execution
// context lifecycle for one engine invocation. It creates exactly one
// guest context, delegates exactly one call to the bridge, releases the
// context on every path, and returns the normalized outcome. It carries
// no business logic of its own.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/caffeineduck/r2d2/guest"
	"go.uber.org/zap"
)

// Config describes one invocation.
type Config struct {
	// Module is the compiled engine. If nil, ModulePath is read instead.
	Module     []byte
	ModulePath string

	// Op names the engine operation (see guest.Operations). Args are
	// passed through to the engine CLI for the main operation.
	Op   string
	Args []string

	// Env is passed to the guest (credentials, endpoint overrides).
	Env map[string]string

	// Timeout bounds the invocation; zero means no limit. The bridge
	// itself never cancels or retries - this is caller policy.
	Timeout time.Duration

	// MemoryLimitPages caps guest memory (64KB pages, 0 = default).
	MemoryLimitPages uint32

	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr

	// Logger receives bridge diagnostics; nil means no logging.
	Logger *zap.Logger
}

// Run performs one bridged invocation and returns its outcome. The
// execution context is created immediately before the call and released
// before Run returns, on every path.
func Run(ctx context.Context, cfg Config) bridge.Outcome {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	module := cfg.Module
	if module == nil {
		if cfg.ModulePath == "" {
			return bridge.Failure(fmt.Errorf("no engine module configured"))
		}
		data, err := os.ReadFile(cfg.ModulePath)
		if err != nil {
			return bridge.Failure(fmt.Errorf("read engine module: %w", err))
		}
		module = data
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts := []guest.ContextOption{
		guest.WithStdout(cfg.Stdout),
		guest.WithStderr(cfg.Stderr),
	}
	if cfg.MemoryLimitPages > 0 {
		opts = append(opts, guest.WithMemoryLimit(cfg.MemoryLimitPages))
	}
	for k, v := range cfg.Env {
		opts = append(opts, guest.WithEnv(k, v))
	}

	ec, err := guest.NewContext(ctx, module, opts...)
	if err != nil {
		return bridge.Failure(fmt.Errorf("create execution context: %w", err))
	}
	defer ec.Close(context.WithoutCancel(ctx))

	op, err := ec.Operation(cfg.Op, cfg.Args...)
	if err != nil {
		return bridge.Failure(err)
	}

	return bridge.Invoke(ctx, op, bridge.WithLogger(logger))
}

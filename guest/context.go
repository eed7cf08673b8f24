package guest

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Context hosts one invocation of the engine module. It owns a wazero
// runtime with WASI instantiated and the compiled engine; the runtime is
// created fresh per invocation and torn down by Close.
type Context struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule

	stdout io.Writer
	stderr io.Writer
	env    [][2]string

	mu     sync.Mutex
	used   bool
	closed bool
}

// ContextOption configures a Context at creation time.
type ContextOption func(*contextConfig)

type contextConfig struct {
	stdout           io.Writer
	stderr           io.Writer
	env              [][2]string
	memoryLimitPages uint32
}

// WithStdout routes the guest's stdout. Defaults to os.Stdout. The usage
// operation captures stdout itself and ignores this.
func WithStdout(w io.Writer) ContextOption {
	return func(c *contextConfig) {
		if w != nil {
			c.stdout = w
		}
	}
}

// WithStderr routes the guest's stderr. Defaults to os.Stderr.
func WithStderr(w io.Writer) ContextOption {
	return func(c *contextConfig) {
		if w != nil {
			c.stderr = w
		}
	}
}

// WithEnv passes an environment variable to the engine (R2 credentials,
// endpoint overrides, and so on).
func WithEnv(key, value string) ContextOption {
	return func(c *contextConfig) {
		c.env = append(c.env, [2]string{key, value})
	}
}

// WithMemoryLimit caps guest memory. Each page is 64KB; 0 means the
// wazero default.
func WithMemoryLimit(pages uint32) ContextOption {
	return func(c *contextConfig) {
		c.memoryLimitPages = pages
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit1MB   uint32 = 16    // 1 MB
	MemoryLimit16MB  uint32 = 256   // 16 MB
	MemoryLimit64MB  uint32 = 1024  // 64 MB
	MemoryLimit256MB uint32 = 4096  // 256 MB
	MemoryLimit1GB   uint32 = 16384 // 1 GB
)

// NewContext creates an execution context for one invocation of the
// given engine module. The runtime closes the guest when ctx is done, so
// a caller-imposed deadline cannot leave the process hanging on a
// suspended guest.
func NewContext(ctx context.Context, module []byte, opts ...ContextOption) (*Context, error) {
	cfg := contextConfig{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}

	return &Context{
		runtime:  rt,
		compiled: compiled,
		stdout:   cfg.stdout,
		stderr:   cfg.stderr,
		env:      cfg.env,
	}, nil
}

// Close releases the runtime and everything compiled into it. Safe to
// call more than once.
func (c *Context) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.runtime.Close(ctx)
}

// acquire claims the context for a single operation run.
func (c *Context) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("execution context closed: %w", bridge.ErrContextUsed)
	}
	if c.used {
		return bridge.ErrContextUsed
	}
	c.used = true
	return nil
}

// moduleConfig builds the per-run base config with the context's
// environment applied.
func (c *Context) moduleConfig() wazero.ModuleConfig {
	cfg := wazero.NewModuleConfig().WithName("")
	for _, kv := range c.env {
		cfg = cfg.WithEnv(kv[0], kv[1])
	}
	return cfg
}

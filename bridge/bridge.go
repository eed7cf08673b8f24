package bridge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Option configures a single Invoke call.
type Option func(*invokeConfig)

type invokeConfig struct {
	logger *zap.Logger
}

// WithLogger attaches a diagnostic logger. The bridge logs at most one
// line per outcome path; the default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *invokeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Invoke dispatches op exactly once and normalizes whatever happens into
// an Outcome. It never retries. Panics out of op.Run are captured and
// converted to abort outcomes so the caller's cleanup still runs and the
// process can terminate in a controlled way.
func Invoke(ctx context.Context, op Operation, opts ...Option) (out Outcome) {
	cfg := invokeConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := op.Name()

	defer func() {
		if r := recover(); r != nil {
			err := NewAbort(name, fmt.Errorf("panic: %v", r))
			cfg.logger.Error("operation panicked",
				zap.String("op", name),
				zap.Any("cause", r))
			out = Abort(err)
		}
	}()

	res, err := op.Run(ctx)
	if err == nil {
		if res == nil {
			res = &Result{}
		}
		cfg.logger.Info("operation completed",
			zap.String("op", name),
			zap.Int("code", res.Code),
			zap.Duration("duration", res.Duration))
		return Success(res)
	}

	var abort *AbortError
	if errors.As(err, &abort) {
		cfg.logger.Error("operation aborted",
			zap.String("op", name),
			zap.Error(err))
		return Abort(err)
	}

	// Bridge misuse is not an engine fault; keep it unwrapped so the
	// caller can tell the two apart.
	if errors.Is(err, ErrContextUsed) {
		cfg.logger.Error("bridge malfunction",
			zap.String("op", name),
			zap.Error(err))
		return Failure(err)
	}

	wrapped := &OperationError{Op: name, Err: err}
	cfg.logger.Warn("operation failed",
		zap.String("op", name),
		zap.Error(err))
	return Failure(wrapped)
}

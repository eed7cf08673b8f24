package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/caffeineduck/r2d2/guest"
	"github.com/caffeineduck/r2d2/launcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds flags shared by every command, plus the single
// outcome of the one invocation a process performs.
type rootOptions struct {
	module  string
	config  string
	timeout time.Duration
	memory  string
	verbose bool

	outcome *bridge.Outcome
}

func newRootCommand() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "r2d2 [-- engine args]",
		Short: "Host launcher for the r2d2 backup engine",
		Long: `r2d2 - Run the r2d2 backup engine (a WASI module) and exit with its status.

Each invocation creates one fresh execution context, drives a single
engine operation to completion, and terminates with the engine's exit
code. Failures the engine reports exit 1; engine crashes exit 2.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to run behavior, like invoking the engine directly.
			return launch(cmd, opts, guest.OpMain, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.module, "module", "m", "", "Path to the engine wasm module")
	cmd.PersistentFlags().StringVar(&opts.config, "config", "", "Config file (default: ~/.config/r2d2/config.yaml)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Invocation timeout (0 = no limit)")
	cmd.PersistentFlags().StringVar(&opts.memory, "memory", "", "Guest memory limit: 1mb, 16mb, 64mb, 256mb, 1gb")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log bridge diagnostics to stderr")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newUsageCommand(opts))
	cmd.AddCommand(newErrorCommand(opts))

	return cmd, opts
}

// Execute runs the CLI and translates its single outcome into the
// process exit status. The outcome is consumed exactly once; main does
// the actual os.Exit.
func Execute() int {
	cmd, opts := newRootCommand()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return bridge.ExitFailure
	}
	if opts.outcome == nil {
		// No invocation happened (help, completion).
		return bridge.ExitSuccess
	}

	opts.outcome.Diagnostic(os.Stderr)
	return opts.outcome.ExitCode()
}

// launch performs the one bridged invocation for this process and
// stores its outcome for Execute to translate.
func launch(cmd *cobra.Command, opts *rootOptions, op string, args []string) error {
	cfg, err := buildConfig(cmd, opts, op, args)
	if err != nil {
		return err
	}

	out := launcher.Run(cmd.Context(), cfg)
	opts.outcome = &out
	return nil
}

func buildConfig(cmd *cobra.Command, opts *rootOptions, op string, args []string) (launcher.Config, error) {
	cfg := launcher.Config{
		ModulePath: opts.module,
		Op:         op,
		Args:       args,
		Timeout:    opts.timeout,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}

	if pages, err := parseMemoryLimit(opts.memory); err != nil {
		return cfg, err
	} else if pages > 0 {
		cfg.MemoryLimitPages = pages
	}

	path, explicit := opts.config, true
	if path == "" {
		path, explicit = launcher.DefaultConfigPath(), false
	}
	if path != "" {
		file, err := launcher.LoadFile(path, explicit)
		if err != nil {
			return cfg, err
		}
		file.Apply(&cfg)
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return cfg, fmt.Errorf("create logger: %w", err)
		}
		cfg.Logger = logger
	}

	return cfg, nil
}

func parseMemoryLimit(s string) (uint32, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "1mb":
		return guest.MemoryLimit1MB, nil
	case "16mb":
		return guest.MemoryLimit16MB, nil
	case "64mb":
		return guest.MemoryLimit64MB, nil
	case "256mb":
		return guest.MemoryLimit256MB, nil
	case "1gb":
		return guest.MemoryLimit1GB, nil
	default:
		return 0, fmt.Errorf("invalid memory limit %q (expected 1mb, 16mb, 64mb, 256mb, or 1gb)", s)
	}
}

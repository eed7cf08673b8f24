// Package r2d2 launches the r2d2 backup engine, a WASI command module,
// from a plain synchronous entry point.
//
// # Overview
//
// One process invocation is one bridged call: a fresh execution context
// (wazero runtime) is created, a single engine operation runs to
// completion inside it, and the normalized outcome becomes the process
// exit status. The context is released on every path; the operation is
// dispatched exactly once and never retried.
//
// # Basic Usage
//
//	out := launcher.Run(ctx, launcher.Config{
//	    ModulePath: "engine.wasm",
//	    Op:         guest.OpMain,
//	    Args:       []string{"backup", "--bucket", "photos"},
//	})
//	out.Diagnostic(os.Stderr)
//	os.Exit(out.ExitCode())
//
// # Outcomes
//
// A completed engine run passes its exit code through verbatim. A fault
// the engine reports exits 1; a trap or panic exits 2, never silently.
//
// See the [bridge], [guest], and [launcher] packages for detailed API
// documentation.
package r2d2

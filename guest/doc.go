// Package guest runs the r2d2 engine, a WASI preview1 command module,
// inside a per-invocation execution context.
//
// A [Context] is one wazero runtime with WASI instantiated and the
// engine compiled into it. It is created immediately before use, serves
// exactly one operation, and is released with Close; it is never shared
// or reused across invocations.
//
// The engine's entry points are enumerated rather than discovered:
// [Context.Operation] resolves one of [Operations] by name and returns a
// [bridge.Operation] the bridge can drive. Guest exit codes surface as
// result codes (a code of 0 from proc_exit is still a success), wasm
// traps surface as aborts, and caller-imposed deadlines stop the guest
// and surface as reported failures.
package guest

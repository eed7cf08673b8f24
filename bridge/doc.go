// Package bridge drives one native engine operation to completion and
// normalizes whatever happens into a single Outcome.
//
// The bridge makes three promises:
//
//   - The operation is dispatched exactly once. Retry policy, if any,
//     belongs to the caller.
//   - Every way the operation can end (value, reported failure, trap or
//     panic) produces exactly one Outcome; nothing is swallowed and
//     nothing escapes as an uncontrolled crash.
//   - A guest-reported fault and a bridge bug are distinguishable:
//     the former is wrapped in [OperationError], the latter surfaces as
//     [ErrContextUsed] or an [AbortError].
//
// Outcomes map to process exit statuses via [Outcome.ExitCode]:
// success passes the guest code through verbatim, a reported failure
// exits 1, an abort exits 2.
package bridge

// Package tasks orchestrates list migration between two Bluesky accounts with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the pipeline operations.
//
// [Engine.Run] performs a full source-to-destination migration. It validates
// the list reference and the destination spec up front, authenticates the
// source account, fetches the full membership, authenticates the destination
// account, creates the new list, and replicates each membership record with
// pacing and per-item failure tolerance. A fully failed replication still
// returns a MigrationResult; only setup failures (auth, fetch, create) abort
// the run.
//
// [Engine.FetchAllMembers] reads a list's complete membership via cursor
// pagination, concatenating pages in server order. A failure on any page
// discards the accumulated prefix and fails the whole fetch.
//
// [Engine.AddMembers] replays members into an existing list, one createRecord
// per member in source order, paced by a [Pacer].
//
// # Progress Reporting
//
// All operations send [ProgressUpdate] values over a caller-supplied channel.
// Sends are non-blocking (select with default) so a slow or absent consumer
// never stalls the pipeline.
//
// # Pacing
//
// The [Pacer] interface decides how long to wait after each write given its
// outcome. [FixedPacer] reproduces the fixed sleeps of the original tool;
// [LimiterPacer] uses a token bucket from golang.org/x/time/rate. The
// replication loop is policy-agnostic.
//
// # Run History
//
// The optional [RunStore] interface enables run persistence. Runs are
// recorded best-effort (store errors are ignored) so bookkeeping can never
// disrupt a migration.
package tasks

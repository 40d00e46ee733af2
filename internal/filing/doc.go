// Package filing moves discovered screenshots into the active session
// directory.
//
// Producers (the directory watcher, capture actions) Enqueue items into an
// unbounded Inbox and never block. Exactly one Filer drains the Inbox in
// FIFO order. Each item ends in a single terminal State: moved, discarded
// because the source vanished, discarded because no session was active,
// skipped after the source stayed locked for every retry, or failed on any
// other error. No per-item failure stops the Filer.
package filing

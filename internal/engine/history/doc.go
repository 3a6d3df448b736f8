// Package history records an undo/redo timeline for the editing engine.
//
// The timeline is a bounded list of full snapshots (document plus selection)
// with a pointer at the entry equal to the live state. Undo moves the
// pointer back and hands the caller a deep copy to restore; redo moves it
// forward. Any committed entry truncates the entries past the pointer, so
// editing after an undo discards the redo tail.
//
// # Batching
//
// Structural operations (insert, delete, move, split, merge, transform)
// commit immediately: each is one undo step. Text and format edits coalesce
// instead. The first such edit opens a batch keyed by block and operation
// kind; further edits with the same key replace the batch's pending snapshot
// and re-arm its deadline. The batch commits as a single entry when the
// quiet interval passes without another matching edit, when an edit with a
// different key arrives, or when history is consulted (undo, redo, Flush).
// Undoing a batch therefore removes the whole typing burst at once.
//
// Time is injected through the Clock interface; production code uses
// SystemClock and tests drive a ManualClock, which makes the deadline
// behavior fully deterministic.
package history

// Package event carries notifications out of the editing engine.
//
// Topics are hierarchical dot-notation names; subscribers register exact
// topics or wildcard patterns ("*" one segment, "**" any tail). Dispatch is
// synchronous: Publish runs every matching handler on the caller's goroutine
// in subscription order, with panics isolated per handler. Payloads are
// plain structs that reference blocks by id string, so subscribers can stay
// free of engine imports.
package event

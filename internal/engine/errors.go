package engine

import "errors"

// Errors returned by session operations. Failures inside document operations
// surface that package's sentinels unchanged (document.ErrNotFound,
// document.ErrRejected, document.ErrCycle, document.ErrDepthExceeded,
// document.ErrNotTextBearing), so callers match with errors.Is.
var (
	// ErrReadOnly indicates a mutating call on a read-only session.
	ErrReadOnly = errors.New("session is read-only")
)

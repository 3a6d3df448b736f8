package document

import "errors"

var (
	// ErrNotFound indicates a block id that does not resolve in the document.
	ErrNotFound = errors.New("block not found")

	// ErrRejected indicates an operation that would violate a document
	// invariant, such as deleting the last root block.
	ErrRejected = errors.New("operation rejected")

	// ErrCycle indicates a move that would place a block inside its own
	// subtree.
	ErrCycle = errors.New("move would create a cycle")

	// ErrDepthExceeded indicates an operation that would nest blocks beyond
	// the document's maximum depth.
	ErrDepthExceeded = errors.New("maximum depth exceeded")

	// ErrNotTextBearing indicates a text operation applied to a structural
	// block kind.
	ErrNotTextBearing = errors.New("block is not text-bearing")
)

// Package document implements the block tree at the core of the editing
// engine: a normalized store of typed blocks plus the structural operations
// that rearrange them.
//
// # Store Shape
//
// A Document holds an ordered list of root block ids and an id-indexed block
// table. Each block carries an ordered child id list, so the tree lives in
// the index rather than in nested values:
//   - every id referenced anywhere resolves to a stored block
//   - every stored block is referenced exactly once (by one parent or by the
//     root list)
//   - the structure is acyclic and nesting is bounded by the configured
//     maximum depth
//   - a document always keeps at least one root block
//
// # Value Semantics
//
// Operations never modify their receiver. Each returns a fresh Document that
// shares unchanged blocks with the old one; blocks are treated as immutable
// once stored, so both values stay valid indefinitely:
//
//	doc2, id, err := doc.Insert(parent, 0, document.NewBlock(document.KindParagraph))
//	if err != nil {
//		// doc is untouched; no partial application
//	}
//
// Failed operations return the receiver unchanged together with a sentinel
// error (ErrNotFound, ErrRejected, ErrCycle, ErrDepthExceeded,
// ErrNotTextBearing).
//
// # Structural Operations
//
// Insert, Delete, Move, Split, MergeWithPrevious, Transform, Indent and
// Outdent cover the editor's block commands. Split and MergeWithPrevious are
// inverses over text-bearing blocks; Transform changes a block's kind and
// wraps or unwraps list containers so children are never orphaned.
//
// Text content itself is the richtext package's run model; UpdateRuns is the
// carrier for native text edits.
package document

// Package selection models where editing focus sits in a block tree: no
// selection, a caret, a single-block text range, or a set of whole blocks.
//
// Selections are plain values detached from any document. Structural
// operations invalidate positions (splits move text into new blocks, merges
// remove blocks, deletes take whole subtrees), so the package pairs each
// operation with an adjuster (AdjustAfterSplit, AdjustAfterMerge,
// AdjustAfterDelete, ...) that remaps a selection across that change, and
// Resolve repairs any selection against a live document by dropping dead
// references and clamping offsets. Callers apply the matching adjuster after
// every operation, then Resolve; a selection handled that way never dangles.
package selection

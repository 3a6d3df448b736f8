package document

import (
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/engine/richtext"
)

// SplitResult describes a completed Split.
type SplitResult struct {
	// NewID is the freshly created sibling holding the text after the split
	// point. A caret following the split belongs at its offset 0.
	NewID BlockID

	// Offset is the clamped rune offset the split happened at.
	Offset int
}

// Split cuts a text-bearing block in two at a rune offset. The original
// keeps the text before the offset; a new block, inserted as its next
// sibling, takes the rest together with all of the original's children. The
// new block repeats the original's kind when that kind repeats on Enter;
// headings continue as paragraphs.
func (d Document) Split(id BlockID, offset int) (Document, SplitResult, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, SplitResult{}, fmt.Errorf("split %s: %w", id, ErrNotFound)
	}
	if !b.Kind.TextBearing() {
		return d, SplitResult{}, fmt.Errorf("split %s (%s): %w", id, b.Kind, ErrNotTextBearing)
	}
	n := richtext.Length(b.Runs)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	left, right := richtext.SplitAt(b.Runs, offset)

	now := time.Now()
	nb := NewBlock(splitKind(b.Kind))
	nd := d.mutate()

	ob := nd.editBlock(id)
	ob.Runs = left
	ob.UpdatedAt = now

	// Children follow the text after the split point.
	nbp := nb.clone()
	nbp.Runs = right
	nbp.Children = ob.Children
	ob.Children = nil
	nd.blocks[nb.ID] = nbp
	for _, c := range nbp.Children {
		nd.parent[c] = nb.ID
	}

	if p, isChild := nd.parent[id]; isChild {
		pb := nd.editBlock(p)
		i := findID(pb.Children, id)
		pb.Children = insertID(pb.Children, i+1, nb.ID)
		pb.UpdatedAt = now
		nd.parent[nb.ID] = p
	} else {
		i := findID(nd.roots, id)
		nd.roots = insertID(nd.roots, i+1, nb.ID)
	}
	return nd, SplitResult{NewID: nb.ID, Offset: offset}, nil
}

// MergeResult describes the outcome of MergeWithPrevious.
type MergeResult struct {
	// Merged is false when the block has no previous sibling; the call was a
	// no-op.
	Merged bool

	// Into is the surviving previous sibling.
	Into BlockID

	// Boundary is Into's rune length before the merge: the offset where the
	// merged text begins and where a caret should land.
	Boundary int
}

// MergeWithPrevious joins a text-bearing block onto its previous sibling:
// the sibling gains the block's text and children, and the block is removed.
// Valid only between two text-bearing blocks. A block with no previous
// sibling merges with nothing and the call reports Merged false.
func (d Document) MergeWithPrevious(id BlockID) (Document, MergeResult, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, MergeResult{}, fmt.Errorf("merge %s: %w", id, ErrNotFound)
	}
	prevID, ok := d.PrevSibling(id)
	if !ok {
		return d, MergeResult{}, nil
	}
	prev := d.blocks[prevID]
	if !b.Kind.TextBearing() || !prev.Kind.TextBearing() {
		return d, MergeResult{}, fmt.Errorf("merge %s into %s: %w", id, prevID, ErrNotTextBearing)
	}
	boundary := richtext.Length(prev.Runs)

	now := time.Now()
	nd := d.mutate()

	pb := nd.editBlock(prevID)
	pb.Runs = richtext.Concat(pb.Runs, b.Runs)
	pb.Children = append(pb.Children, b.Children...)
	pb.UpdatedAt = now
	for _, c := range b.Children {
		nd.parent[c] = prevID
	}

	if p, isChild := nd.parent[id]; isChild {
		ppb := nd.editBlock(p)
		ppb.Children, _ = removeID(ppb.Children, id)
		ppb.UpdatedAt = now
	} else {
		nd.roots, _ = removeID(nd.roots, id)
	}
	delete(nd.blocks, id)
	delete(nd.parent, id)
	return nd, MergeResult{Merged: true, Into: prevID, Boundary: boundary}, nil
}

// UpdateRuns replaces a text-bearing block's content. The carrier for native
// text edits pushed by the binding layer; runs are normalized on the way in.
func (d Document) UpdateRuns(id BlockID, runs richtext.Runs) (Document, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, fmt.Errorf("update runs %s: %w", id, ErrNotFound)
	}
	if !b.Kind.TextBearing() {
		return d, fmt.Errorf("update runs %s (%s): %w", id, b.Kind, ErrNotTextBearing)
	}
	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Runs = richtext.Normalize(runs)
	eb.UpdatedAt = time.Now()
	return nd, nil
}

// SetCollapsed opens or closes a toggle block.
func (d Document) SetCollapsed(id BlockID, collapsed bool) (Document, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, fmt.Errorf("set collapsed %s: %w", id, ErrNotFound)
	}
	if b.Kind != KindToggle {
		return d, fmt.Errorf("set collapsed %s (%s): %w", id, b.Kind, ErrRejected)
	}
	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Collapsed = collapsed
	eb.UpdatedAt = time.Now()
	return nd, nil
}

// SetImage replaces an image block's source and caption.
func (d Document) SetImage(id BlockID, source string, caption richtext.Runs) (Document, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, fmt.Errorf("set image %s: %w", id, ErrNotFound)
	}
	if b.Kind != KindImage {
		return d, fmt.Errorf("set image %s (%s): %w", id, b.Kind, ErrRejected)
	}
	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Source = source
	eb.Caption = richtext.Normalize(caption)
	eb.UpdatedAt = time.Now()
	return nd, nil
}

// SetWidth changes a column's width fraction, clamped to (0, 1].
func (d Document) SetWidth(id BlockID, width float64) (Document, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, fmt.Errorf("set width %s: %w", id, ErrNotFound)
	}
	if b.Kind != KindColumn {
		return d, fmt.Errorf("set width %s (%s): %w", id, b.Kind, ErrRejected)
	}
	if width <= 0 || width > 1 {
		width = 1
	}
	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Width = width
	eb.UpdatedAt = time.Now()
	return nd, nil
}

package document

import (
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/engine/richtext"
)

// findID returns the index of id in list, or -1.
func findID(list []BlockID, id BlockID) int {
	for i, e := range list {
		if e == id {
			return i
		}
	}
	return -1
}

// insertID returns a new slice with id inserted at index (clamped).
func insertID(list []BlockID, index int, id BlockID) []BlockID {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]BlockID, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, id)
	out = append(out, list[index:]...)
	return out
}

// removeID returns a new slice without id, plus the index id held (-1 if
// absent, in which case the original slice is returned).
func removeID(list []BlockID, id BlockID) ([]BlockID, int) {
	i := findID(list, id)
	if i < 0 {
		return list, -1
	}
	out := make([]BlockID, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, i
}

// spliceIDs returns a new slice with list[i] replaced by seq.
func spliceIDs(list []BlockID, i int, seq []BlockID) []BlockID {
	out := make([]BlockID, 0, len(list)-1+len(seq))
	out = append(out, list[:i]...)
	out = append(out, seq...)
	out = append(out, list[i+1:]...)
	return out
}

// Insert adds b under parent at the given child index; an empty parent
// inserts at the root level. The index is clamped to the child list. Blocks
// are inserted one at a time: b must not carry children (Build reconstructs
// whole trees). Returns the id of the inserted block.
func (d Document) Insert(parent BlockID, index int, b Block) (Document, BlockID, error) {
	if !b.Kind.Valid() {
		return d, "", fmt.Errorf("insert: unknown kind %d: %w", uint8(b.Kind), ErrRejected)
	}
	if len(b.Children) != 0 {
		return d, "", fmt.Errorf("insert: block carries a prebuilt subtree: %w", ErrRejected)
	}
	if parent != "" {
		if !d.Has(parent) {
			return d, "", fmt.Errorf("insert under %s: %w", parent, ErrNotFound)
		}
		if d.Depth(parent)+1 >= d.MaxDepth() {
			return d, "", fmt.Errorf("insert under %s: %w", parent, ErrDepthExceeded)
		}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	if d.Has(b.ID) {
		return d, "", fmt.Errorf("insert: id %s already present: %w", b.ID, ErrRejected)
	}
	normalizePayload(&b)
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	nd := d.mutate()
	nd.blocks[b.ID] = b.clone()
	if parent == "" {
		nd.roots = insertID(nd.roots, index, b.ID)
	} else {
		pb := nd.editBlock(parent)
		pb.Children = insertID(pb.Children, index, b.ID)
		pb.UpdatedAt = now
		nd.parent[b.ID] = parent
	}
	return nd, b.ID, nil
}

// InsertAfter adds b as the next sibling of ref.
func (d Document) InsertAfter(ref BlockID, b Block) (Document, BlockID, error) {
	_, i := d.siblingList(ref)
	if i < 0 {
		return d, "", fmt.Errorf("insert after %s: %w", ref, ErrNotFound)
	}
	return d.Insert(d.parent[ref], i+1, b)
}

// normalizePayload clears payload fields that do not belong to the block's
// kind and normalizes the ones that do.
func normalizePayload(b *Block) {
	if b.Kind.TextBearing() {
		b.Runs = richtext.Normalize(b.Runs)
	} else {
		b.Runs = nil
	}
	if b.Kind != KindToggle {
		b.Collapsed = false
	}
	if b.Kind == KindImage {
		b.Caption = richtext.Normalize(b.Caption)
	} else {
		b.Source = ""
		b.Caption = nil
	}
	if b.Kind == KindColumn {
		if b.Width <= 0 || b.Width > 1 {
			b.Width = 1
		}
	} else {
		b.Width = 0
	}
}

// DeleteResult describes a completed Delete.
type DeleteResult struct {
	// Removed lists the deleted block and its descendants in preorder.
	Removed []BlockID

	// Focus is the block a caret should land on: the previous sibling when
	// one exists, else the next sibling, else the parent.
	Focus BlockID
}

// Delete removes a block and its entire subtree. Deleting the last remaining
// root block is rejected: a document never becomes empty.
func (d Document) Delete(id BlockID) (Document, DeleteResult, error) {
	if !d.Has(id) {
		return d, DeleteResult{}, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	p, isChild := d.parent[id]
	if !isChild && len(d.roots) == 1 {
		return d, DeleteResult{}, fmt.Errorf("delete %s: last root block: %w", id, ErrRejected)
	}

	var focus BlockID
	if prev, ok := d.PrevSibling(id); ok {
		focus = prev
	} else if next, ok := d.NextSibling(id); ok {
		focus = next
	} else {
		focus = p
	}

	removed := d.subtree(id)
	nd := d.mutate()
	if isChild {
		pb := nd.editBlock(p)
		pb.Children, _ = removeID(pb.Children, id)
		pb.UpdatedAt = time.Now()
	} else {
		nd.roots, _ = removeID(nd.roots, id)
	}
	for _, rid := range removed {
		delete(nd.blocks, rid)
		delete(nd.parent, rid)
	}
	return nd, DeleteResult{Removed: removed, Focus: focus}, nil
}

// Move reattaches a block (with its subtree) under newParent at the given
// child index; an empty newParent moves it to the root level. The index is
// interpreted against the child list before removal, so moving a block later
// within its own parent works the way a caller counting visible positions
// expects. Moving a block into its own subtree is rejected with ErrCycle;
// moves that would nest beyond the depth bound are rejected with
// ErrDepthExceeded.
func (d Document) Move(id, newParent BlockID, index int) (Document, error) {
	if !d.Has(id) {
		return d, fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	newDepth := 0
	if newParent != "" {
		if !d.Has(newParent) {
			return d, fmt.Errorf("move under %s: %w", newParent, ErrNotFound)
		}
		if d.inSubtree(newParent, id) {
			return d, fmt.Errorf("move %s under %s: %w", id, newParent, ErrCycle)
		}
		newDepth = d.Depth(newParent) + 1
	}
	if newDepth+d.height(id)-1 >= d.MaxDepth() {
		return d, fmt.Errorf("move %s: %w", id, ErrDepthExceeded)
	}

	now := time.Now()
	nd := d.mutate()

	oldParent, wasChild := nd.parent[id]
	var oldIdx int
	if wasChild {
		pb := nd.editBlock(oldParent)
		pb.Children, oldIdx = removeID(pb.Children, id)
		pb.UpdatedAt = now
		delete(nd.parent, id)
		if oldParent == newParent && oldIdx < index {
			index--
		}
	} else {
		nd.roots, oldIdx = removeID(nd.roots, id)
		if newParent == "" && oldIdx < index {
			index--
		}
	}

	if newParent == "" {
		nd.roots = insertID(nd.roots, index, id)
	} else {
		pb := nd.editBlock(newParent)
		pb.Children = insertID(pb.Children, index, id)
		pb.UpdatedAt = now
		nd.parent[id] = newParent
	}
	mb := nd.editBlock(id)
	mb.UpdatedAt = now
	return nd, nil
}

// Indent makes a block the last child of its previous sibling. Rejected when
// it has none.
func (d Document) Indent(id BlockID) (Document, error) {
	prev, ok := d.PrevSibling(id)
	if !ok {
		if !d.Has(id) {
			return d, fmt.Errorf("indent %s: %w", id, ErrNotFound)
		}
		return d, fmt.Errorf("indent %s: no previous sibling: %w", id, ErrRejected)
	}
	return d.Move(id, prev, len(d.blocks[prev].Children))
}

// Outdent makes a block the next sibling of its parent; the trailing
// siblings it leaves behind become its children, outliner style. Rejected
// for root-level blocks.
func (d Document) Outdent(id BlockID) (Document, error) {
	if !d.Has(id) {
		return d, fmt.Errorf("outdent %s: %w", id, ErrNotFound)
	}
	p, ok := d.parent[id]
	if !ok {
		return d, fmt.Errorf("outdent %s: already at root level: %w", id, ErrRejected)
	}

	now := time.Now()
	nd := d.mutate()

	pb := nd.editBlock(p)
	idx := findID(pb.Children, id)
	trailing := append([]BlockID(nil), pb.Children[idx+1:]...)
	pb.Children = pb.Children[:idx]
	pb.UpdatedAt = now

	ib := nd.editBlock(id)
	ib.UpdatedAt = now
	if len(trailing) > 0 {
		ib.Children = append(ib.Children, trailing...)
		for _, tid := range trailing {
			nd.parent[tid] = id
		}
	}

	if gp, isChild := nd.parent[p]; isChild {
		gpb := nd.editBlock(gp)
		pIdx := findID(gpb.Children, p)
		gpb.Children = insertID(gpb.Children, pIdx+1, id)
		nd.parent[id] = gp
	} else {
		pIdx := findID(nd.roots, p)
		nd.roots = insertID(nd.roots, pIdx+1, id)
		delete(nd.parent, id)
	}
	return nd, nil
}

package document

import (
	"fmt"
	"time"
)

// Transform changes a block's kind, following the transform menu
// (AvailableTransforms). Text stays when both kinds are text-bearing and is
// discarded when the target is structural. List membership is kept
// consistent rather than leaving children or items orphaned:
//
//   - a text-bearing block turned into a list kind is wrapped in a list
//     container at its old position (or reuses the container it already
//     lives in)
//   - a list item turned into a non-item kind is hoisted out of its
//     container, splitting the container around it when needed
//   - turning one list container kind into the other relabels it in place
//
// Transforming a block to its current kind is a no-op.
func (d Document) Transform(id BlockID, to Kind) (Document, error) {
	b, ok := d.blocks[id]
	if !ok {
		return d, fmt.Errorf("transform %s: %w", id, ErrNotFound)
	}
	if b.Kind == to {
		return d, nil
	}
	if !canTransform(b.Kind, to) {
		return d, fmt.Errorf("transform %s from %s to %s: %w", id, b.Kind, to, ErrRejected)
	}

	switch {
	case to == KindListItem:
		// Stay in whichever list container already holds the block.
		ck := KindBulletList
		if p, isChild := d.parent[id]; isChild && d.blocks[p].Kind.ListContainer() {
			ck = d.blocks[p].Kind
		}
		return d.transformToItem(id, ck)

	case to.ListContainer() && b.Kind.ListContainer():
		nd := d.mutate()
		eb := nd.editBlock(id)
		eb.Kind = to
		eb.UpdatedAt = time.Now()
		return nd, nil

	case to.ListContainer():
		return d.transformToItem(id, to)

	default:
		return d.transformPlain(id, to)
	}
}

// transformPlain rewrites the block's kind and payload in place, hoisting it
// out of a list container first when it stops being a list item.
func (d Document) transformPlain(id BlockID, to Kind) (Document, error) {
	b := d.blocks[id]
	hoist := b.Kind == KindListItem && d.parentIsListContainer(id)

	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Kind = to
	normalizePayload(eb)
	eb.UpdatedAt = time.Now()

	if hoist {
		return nd.hoistFromContainer(id)
	}
	return nd, nil
}

// transformToItem turns a text-bearing block into a list item housed in a
// container of the given kind: reusing the container it already lives in,
// rewrapping when the container kind differs, or wrapping in a fresh
// container otherwise.
func (d Document) transformToItem(id BlockID, containerKind Kind) (Document, error) {
	var parentKind Kind
	if p, isChild := d.parent[id]; isChild {
		parentKind = d.blocks[p].Kind
	}

	nd := d.mutate()
	eb := nd.editBlock(id)
	eb.Kind = KindListItem
	normalizePayload(eb)
	eb.UpdatedAt = time.Now()

	switch {
	case parentKind == containerKind:
		return nd, nil
	case parentKind.ListContainer():
		hoisted, err := nd.hoistFromContainer(id)
		if err != nil {
			return d, err
		}
		wrapped, err := hoisted.wrapInContainer(id, containerKind)
		if err != nil {
			return d, err
		}
		return wrapped, nil
	default:
		wrapped, err := nd.wrapInContainer(id, containerKind)
		if err != nil {
			return d, err
		}
		return wrapped, nil
	}
}

func (d Document) parentIsListContainer(id BlockID) bool {
	p, isChild := d.parent[id]
	return isChild && d.blocks[p].Kind.ListContainer()
}

// wrapInContainer creates a new container of the given kind at id's position
// and makes id its only child.
func (d Document) wrapInContainer(id BlockID, containerKind Kind) (Document, error) {
	if d.Depth(id)+d.height(id) >= d.MaxDepth() {
		return d, fmt.Errorf("wrap %s: %w", id, ErrDepthExceeded)
	}
	now := time.Now()
	nd := d.mutate()

	c := NewBlock(containerKind)
	cp := c.clone()
	cp.Children = []BlockID{id}
	nd.blocks[c.ID] = cp

	if gp, isChild := nd.parent[id]; isChild {
		gpb := nd.editBlock(gp)
		i := findID(gpb.Children, id)
		gpb.Children[i] = c.ID
		gpb.UpdatedAt = now
		nd.parent[c.ID] = gp
	} else {
		i := findID(nd.roots, id)
		nd.roots[i] = c.ID
	}
	nd.parent[id] = c.ID
	return nd, nil
}

// hoistFromContainer lifts a block out of its parent container into the
// container's own sibling list, splitting the container in two when the
// block sat in its middle and dropping container halves left empty.
func (d Document) hoistFromContainer(id BlockID) (Document, error) {
	c, isChild := d.parent[id]
	if !isChild {
		return d, nil
	}
	cb := d.blocks[c]
	idx := findID(cb.Children, id)
	before := append([]BlockID(nil), cb.Children[:idx]...)
	after := append([]BlockID(nil), cb.Children[idx+1:]...)
	gp, gpIsBlock := d.parent[c]

	now := time.Now()
	nd := d.mutate()

	// The sequence that takes the container's place in its sibling list.
	var seq []BlockID
	switch {
	case len(before) == 0 && len(after) == 0:
		seq = []BlockID{id}
		delete(nd.blocks, c)
		delete(nd.parent, c)
	case len(after) == 0:
		ceb := nd.editBlock(c)
		ceb.Children = before
		ceb.UpdatedAt = now
		seq = []BlockID{c, id}
	case len(before) == 0:
		ceb := nd.editBlock(c)
		ceb.Children = after
		ceb.UpdatedAt = now
		seq = []BlockID{id, c}
	default:
		ceb := nd.editBlock(c)
		ceb.Children = before
		ceb.UpdatedAt = now
		c2 := NewBlock(cb.Kind)
		c2p := c2.clone()
		c2p.Children = after
		nd.blocks[c2.ID] = c2p
		for _, a := range after {
			nd.parent[a] = c2.ID
		}
		seq = []BlockID{c, id, c2.ID}
	}

	if gpIsBlock {
		gpb := nd.editBlock(gp)
		i := findID(gpb.Children, c)
		gpb.Children = spliceIDs(gpb.Children, i, seq)
		gpb.UpdatedAt = now
		for _, e := range seq {
			nd.parent[e] = gp
		}
	} else {
		i := findID(nd.roots, c)
		nd.roots = spliceIDs(nd.roots, i, seq)
		for _, e := range seq {
			delete(nd.parent, e)
		}
	}
	return nd, nil
}

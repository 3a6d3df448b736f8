package selection

import (
	"sort"

	"github.com/dshills/inkwell/internal/engine/document"
)

// clamp bounds a position's offset to the block's current text length.
// Structural blocks have length zero, so a caret on one sits at offset 0.
func clamp(d document.Document, p Position) Position {
	n := d.TextLength(p.Block)
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset > n {
		p.Offset = n
	}
	return p
}

// Resolve repairs a selection against the live document so it never
// dangles: dead block references are dropped, offsets are clamped to the
// block's text length, a range whose ends sit in different blocks collapses
// to a block selection, and an emptied selection becomes None. Block sets
// come back deduplicated in document order.
func Resolve(d document.Document, s Selection) Selection {
	switch s.Kind {
	case KindCaret:
		if !d.Has(s.Anchor.Block) {
			return Selection{}
		}
		return Caret(clamp(d, s.Anchor))

	case KindRange:
		aok := d.Has(s.Anchor.Block)
		fok := d.Has(s.Focus.Block)
		switch {
		case !aok && !fok:
			return Selection{}
		case !aok:
			return Caret(clamp(d, s.Focus))
		case !fok:
			return Caret(clamp(d, s.Anchor))
		}
		a := clamp(d, s.Anchor)
		f := clamp(d, s.Focus)
		if a.Block != f.Block {
			return Resolve(d, Blocks(a.Block, f.Block))
		}
		return Range(a, f)

	case KindBlocks:
		live := make([]document.BlockID, 0, len(s.IDs))
		for _, id := range s.IDs {
			if d.Has(id) && !containsID(live, id) {
				live = append(live, id)
			}
		}
		if len(live) == 0 {
			return Selection{}
		}
		sort.Slice(live, func(i, j int) bool {
			return d.Compare(live[i], live[j]) < 0
		})
		return Selection{Kind: KindBlocks, IDs: live}

	default:
		return Selection{}
	}
}

// NormalizeRange orders a range's endpoints by document position, offsets
// deciding within a single block. ok is false for non-range selections.
func NormalizeRange(d document.Document, s Selection) (start, end Position, ok bool) {
	if s.Kind != KindRange {
		return Position{}, Position{}, false
	}
	a, f := s.Anchor, s.Focus
	c := d.Compare(a.Block, f.Block)
	if c > 0 || (c == 0 && a.Offset > f.Offset) {
		a, f = f, a
	}
	return a, f, true
}

// AdjustAfterSplit remaps positions in a block that was just split.
// Positions strictly after the split offset belong to the new block at
// offset - splitOffset; positions at or before it stay where they are.
func AdjustAfterSplit(s Selection, id document.BlockID, res document.SplitResult) Selection {
	remap := func(p Position) Position {
		if p.Block == id && p.Offset > res.Offset {
			return Position{Block: res.NewID, Offset: p.Offset - res.Offset}
		}
		return p
	}
	switch s.Kind {
	case KindCaret:
		return Caret(remap(s.Anchor))
	case KindRange:
		return Range(remap(s.Anchor), remap(s.Focus))
	default:
		return s
	}
}

// AdjustAfterMerge remaps positions in the removed block onto the surviving
// sibling, shifted past the boundary where the merged text begins. Positions
// in the survivor stay. A no-op merge leaves the selection untouched.
func AdjustAfterMerge(s Selection, removed document.BlockID, res document.MergeResult) Selection {
	if !res.Merged {
		return s
	}
	remap := func(p Position) Position {
		if p.Block == removed {
			return Position{Block: res.Into, Offset: res.Boundary + p.Offset}
		}
		return p
	}
	switch s.Kind {
	case KindCaret:
		return Caret(remap(s.Anchor))
	case KindRange:
		return Range(remap(s.Anchor), remap(s.Focus))
	case KindBlocks:
		ids := make([]document.BlockID, len(s.IDs))
		for i, bid := range s.IDs {
			if bid == removed {
				bid = res.Into
			}
			ids[i] = bid
		}
		return Blocks(ids...)
	default:
		return s
	}
}

// AdjustAfterDelete moves positions that sat inside the removed subtree to
// the delete's focus target at offset 0. When every referenced block was
// removed and no focus target exists the selection becomes None.
func AdjustAfterDelete(s Selection, res document.DeleteResult) Selection {
	dead := func(id document.BlockID) bool {
		return containsID(res.Removed, id)
	}
	target := Selection{}
	if res.Focus != "" {
		target = CaretAt(res.Focus, 0)
	}
	switch s.Kind {
	case KindCaret:
		if dead(s.Anchor.Block) {
			return target
		}
		return s
	case KindRange:
		adead := dead(s.Anchor.Block)
		fdead := dead(s.Focus.Block)
		switch {
		case adead && fdead:
			return target
		case adead:
			return Caret(s.Focus)
		case fdead:
			return Caret(s.Anchor)
		}
		return s
	case KindBlocks:
		live := make([]document.BlockID, 0, len(s.IDs))
		for _, id := range s.IDs {
			if !dead(id) {
				live = append(live, id)
			}
		}
		if len(live) == 0 {
			return target
		}
		return Blocks(live...)
	default:
		return s
	}
}

// AdjustAfterInsert leaves the selection unchanged: inserting a block never
// moves existing ids or offsets.
func AdjustAfterInsert(s Selection, id document.BlockID) Selection { return s }

// AdjustAfterMove leaves the selection unchanged: a moved block keeps its id
// and its text.
func AdjustAfterMove(s Selection, id document.BlockID) Selection { return s }

package selection

import (
	"fmt"
	"strings"

	"github.com/dshills/inkwell/internal/engine/document"
)

// Kind discriminates the selection variants.
type Kind uint8

// Selection variants.
const (
	// KindNone is the empty selection; the zero value.
	KindNone Kind = iota

	// KindCaret is a single insertion point inside one block.
	KindCaret

	// KindRange is a text span between two positions. A resolved range
	// always has both endpoints in the same block; cross-block ranges
	// collapse to a block selection on resolve.
	KindRange

	// KindBlocks is a whole-block selection of one or more blocks.
	KindBlocks
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCaret:
		return "caret"
	case KindRange:
		return "range"
	case KindBlocks:
		return "blocks"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Position addresses a rune offset within a block's text.
type Position struct {
	Block  document.BlockID
	Offset int
}

// Selection is a closed tagged variant: switch on Kind and read only the
// fields that variant carries. The zero value is the empty selection.
// Selections are plain values; adjusting one never mutates the original.
type Selection struct {
	Kind Kind

	// Anchor is the caret position for KindCaret and the fixed end of a
	// KindRange.
	Anchor Position

	// Focus is the moving end of a KindRange. For a caret it repeats
	// Anchor.
	Focus Position

	// IDs are the selected blocks for KindBlocks.
	IDs []document.BlockID
}

// None returns the empty selection.
func None() Selection { return Selection{} }

// Caret returns a caret selection at p.
func Caret(p Position) Selection {
	return Selection{Kind: KindCaret, Anchor: p, Focus: p}
}

// CaretAt returns a caret selection inside block id at a rune offset.
func CaretAt(id document.BlockID, offset int) Selection {
	return Caret(Position{Block: id, Offset: offset})
}

// Range returns a text range between anchor and focus. Equal endpoints
// collapse to a caret.
func Range(anchor, focus Position) Selection {
	if anchor == focus {
		return Caret(anchor)
	}
	return Selection{Kind: KindRange, Anchor: anchor, Focus: focus}
}

// Blocks returns a whole-block selection. Empty and duplicate ids are
// dropped; an empty list yields the empty selection.
func Blocks(ids ...document.BlockID) Selection {
	out := make([]document.BlockID, 0, len(ids))
	for _, id := range ids {
		if id == "" || containsID(out, id) {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return Selection{}
	}
	return Selection{Kind: KindBlocks, IDs: out}
}

// IsNone reports whether the selection is empty.
func (s Selection) IsNone() bool { return s.Kind == KindNone }

// Head returns the position where the caret visually sits: the caret
// itself, or the moving end of a range. ok is false for empty and block
// selections.
func (s Selection) Head() (Position, bool) {
	switch s.Kind {
	case KindCaret:
		return s.Anchor, true
	case KindRange:
		return s.Focus, true
	default:
		return Position{}, false
	}
}

// In reports whether the selection touches the given block.
func (s Selection) In(id document.BlockID) bool {
	switch s.Kind {
	case KindCaret:
		return s.Anchor.Block == id
	case KindRange:
		return s.Anchor.Block == id || s.Focus.Block == id
	case KindBlocks:
		return containsID(s.IDs, id)
	default:
		return false
	}
}

// Clone returns a copy that shares no state with the receiver.
func (s Selection) Clone() Selection {
	if s.Kind == KindBlocks {
		ids := make([]document.BlockID, len(s.IDs))
		copy(ids, s.IDs)
		s.IDs = ids
	}
	return s
}

// Equal reports structural equality.
func (s Selection) Equal(o Selection) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindCaret:
		return s.Anchor == o.Anchor
	case KindRange:
		return s.Anchor == o.Anchor && s.Focus == o.Focus
	case KindBlocks:
		if len(s.IDs) != len(o.IDs) {
			return false
		}
		for i := range s.IDs {
			if s.IDs[i] != o.IDs[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders a compact description for logs.
func (s Selection) String() string {
	switch s.Kind {
	case KindCaret:
		return fmt.Sprintf("caret(%s:%d)", s.Anchor.Block, s.Anchor.Offset)
	case KindRange:
		return fmt.Sprintf("range(%s:%d..%s:%d)",
			s.Anchor.Block, s.Anchor.Offset, s.Focus.Block, s.Focus.Offset)
	case KindBlocks:
		ids := make([]string, len(s.IDs))
		for i, id := range s.IDs {
			ids[i] = string(id)
		}
		return "blocks(" + strings.Join(ids, ",") + ")"
	default:
		return "none"
	}
}

func containsID(list []document.BlockID, id document.BlockID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

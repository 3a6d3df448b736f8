package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/engine/richtext"
)

// BlockID uniquely identifies a block within a document. Ids are opaque and
// stable across every operation except Delete.
type BlockID string

// Block is one node of the document tree. Which payload fields are
// meaningful depends on Kind: text-bearing kinds use Runs, toggles use
// Collapsed, images use Source and Caption, columns use Width. Every block
// carries an ordered child list regardless of kind.
type Block struct {
	ID       BlockID
	Kind     Kind
	Children []BlockID

	// Runs is the rich text of text-bearing kinds; nil for structural kinds.
	Runs richtext.Runs

	// Collapsed hides a toggle's children when true.
	Collapsed bool

	// Source and Caption describe an image block.
	Source  string
	Caption richtext.Runs

	// Width is a column's fraction of the available width, in (0, 1].
	Width float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBlock returns a block of the given kind with a fresh id and current
// timestamps.
func NewBlock(kind Kind) Block {
	now := time.Now()
	return Block{
		ID:        newID(),
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTextBlock returns a text-bearing block holding unmarked text.
func NewTextBlock(kind Kind, text string) Block {
	b := NewBlock(kind)
	b.Runs = richtext.Plain(text)
	return b
}

func newID() BlockID {
	return BlockID(uuid.NewString())
}

// Length returns the rune length of the block's text.
func (b Block) Length() int {
	return richtext.Length(b.Runs)
}

// Text returns the block's plain text.
func (b Block) Text() string {
	return richtext.PlainText(b.Runs)
}

// clone returns an independent copy of the block.
func (b Block) clone() *Block {
	nb := b
	if b.Children != nil {
		nb.Children = make([]BlockID, len(b.Children))
		copy(nb.Children, b.Children)
	}
	nb.Runs = richtext.Clone(b.Runs)
	nb.Caption = richtext.Clone(b.Caption)
	return &nb
}

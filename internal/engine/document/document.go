package document

import (
	"fmt"

	"github.com/dshills/inkwell/internal/engine/richtext"
)

// DefaultMaxDepth bounds block nesting. Roots sit at depth 0; a block may
// nest no deeper than DefaultMaxDepth-1 unless the document was built with a
// different bound.
const DefaultMaxDepth = 32

// Document is the normalized block store: ordered root ids plus an
// id-indexed block table. The zero value is an empty document; use New or
// Build to obtain a valid one (a valid document always has at least one root
// block).
//
// Document is a value type. Operations return fresh values and never modify
// their receiver; stored blocks are immutable and shared between values, so
// any Document ever returned remains valid.
type Document struct {
	roots    []BlockID
	blocks   map[BlockID]*Block
	parent   map[BlockID]BlockID
	maxDepth int
}

// New returns a document holding a single empty root block of the given
// kind.
func New(kind Kind) Document {
	return NewWithBlock(NewBlock(kind))
}

// NewWithBlock returns a document whose single root is b. Any child list on
// b is dropped; use Build to reconstruct whole trees.
func NewWithBlock(b Block) Document {
	b.Children = nil
	d, _, err := (Document{maxDepth: DefaultMaxDepth}).Insert("", 0, b)
	if err != nil {
		// Only an invalid kind can get here; fall back to a paragraph so New
		// always yields a valid document.
		d, _, _ = (Document{maxDepth: DefaultMaxDepth}).Insert("", 0, NewBlock(KindParagraph))
	}
	return d
}

// Build reconstructs a document from stored blocks: roots orders the top
// level and every block's child list must resolve. A maxDepth of 0 means
// DefaultMaxDepth. The result is validated before it is returned.
func Build(roots []BlockID, blocks []Block, maxDepth int) (Document, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	d := Document{
		roots:    make([]BlockID, len(roots)),
		blocks:   make(map[BlockID]*Block, len(blocks)),
		parent:   make(map[BlockID]BlockID, len(blocks)),
		maxDepth: maxDepth,
	}
	copy(d.roots, roots)
	for _, b := range blocks {
		if _, dup := d.blocks[b.ID]; dup {
			return Document{}, fmt.Errorf("build: duplicate block %s: %w", b.ID, ErrRejected)
		}
		d.blocks[b.ID] = b.clone()
	}
	for id, b := range d.blocks {
		for _, c := range b.Children {
			d.parent[c] = id
		}
	}
	if err := d.Validate(); err != nil {
		return Document{}, fmt.Errorf("build: %w", err)
	}
	return d, nil
}

// === Accessors ===

// Len returns the number of blocks in the document.
func (d Document) Len() int {
	return len(d.blocks)
}

// Has reports whether id resolves to a block.
func (d Document) Has(id BlockID) bool {
	_, ok := d.blocks[id]
	return ok
}

// Get returns an independent copy of the block with the given id.
func (d Document) Get(id BlockID) (Block, bool) {
	b, ok := d.blocks[id]
	if !ok {
		return Block{}, false
	}
	return *b.clone(), true
}

// Roots returns a copy of the ordered root id list.
func (d Document) Roots() []BlockID {
	out := make([]BlockID, len(d.roots))
	copy(out, d.roots)
	return out
}

// ChildrenOf returns a copy of a block's ordered child id list.
func (d Document) ChildrenOf(id BlockID) []BlockID {
	b, ok := d.blocks[id]
	if !ok || len(b.Children) == 0 {
		return nil
	}
	out := make([]BlockID, len(b.Children))
	copy(out, b.Children)
	return out
}

// Parent returns the parent of id; ok is false for roots and unknown ids.
func (d Document) Parent(id BlockID) (BlockID, bool) {
	p, ok := d.parent[id]
	return p, ok
}

// Depth returns a block's nesting depth (roots are 0), or -1 for unknown
// ids.
func (d Document) Depth(id BlockID) int {
	if !d.Has(id) {
		return -1
	}
	depth := 0
	for {
		p, ok := d.parent[id]
		if !ok {
			return depth
		}
		id = p
		depth++
	}
}

// MaxDepth returns the document's nesting bound.
func (d Document) MaxDepth() int {
	if d.maxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.maxDepth
}

// WithMaxDepth returns a copy of the document with a different nesting
// bound. The bound applies to future operations; existing nesting is not
// rewritten.
func (d Document) WithMaxDepth(n int) Document {
	nd := d.mutate()
	if n <= 0 {
		n = DefaultMaxDepth
	}
	nd.maxDepth = n
	return nd
}

// PlainText returns the plain text of a block, or "" for structural and
// unknown blocks.
func (d Document) PlainText(id BlockID) string {
	b, ok := d.blocks[id]
	if !ok {
		return ""
	}
	return richtext.PlainText(b.Runs)
}

// TextLength returns the rune length of a block's text.
func (d Document) TextLength(id BlockID) int {
	b, ok := d.blocks[id]
	if !ok {
		return 0
	}
	return richtext.Length(b.Runs)
}

// siblingList returns the child list containing id (the root list for
// roots) and id's index within it, or a nil list when id is unknown.
func (d Document) siblingList(id BlockID) ([]BlockID, int) {
	if !d.Has(id) {
		return nil, -1
	}
	list := d.roots
	if p, ok := d.parent[id]; ok {
		list = d.blocks[p].Children
	}
	for i, e := range list {
		if e == id {
			return list, i
		}
	}
	return nil, -1
}

// Siblings returns a copy of the child list containing id (the root list for
// roots) together with id's index in it. Unknown ids yield (nil, -1).
func (d Document) Siblings(id BlockID) ([]BlockID, int) {
	list, i := d.siblingList(id)
	if i < 0 {
		return nil, -1
	}
	out := make([]BlockID, len(list))
	copy(out, list)
	return out, i
}

// PrevSibling returns the sibling immediately before id.
func (d Document) PrevSibling(id BlockID) (BlockID, bool) {
	list, i := d.siblingList(id)
	if i <= 0 {
		return "", false
	}
	return list[i-1], true
}

// NextSibling returns the sibling immediately after id.
func (d Document) NextSibling(id BlockID) (BlockID, bool) {
	list, i := d.siblingList(id)
	if i < 0 || i+1 >= len(list) {
		return "", false
	}
	return list[i+1], true
}

// === Traversal ===

// Walk visits every block in document (preorder) position, passing each
// block as an independent copy together with its depth. Returning false
// stops the walk.
func (d Document) Walk(fn func(b Block, depth int) bool) {
	d.walk(func(id BlockID, depth int) bool {
		return fn(*d.blocks[id].clone(), depth)
	})
}

// walk is the allocation-free internal preorder traversal.
func (d Document) walk(fn func(id BlockID, depth int) bool) {
	var visit func(id BlockID, depth int) bool
	visit = func(id BlockID, depth int) bool {
		b, ok := d.blocks[id]
		if !ok {
			return true
		}
		if !fn(id, depth) {
			return false
		}
		for _, c := range b.Children {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range d.roots {
		if !visit(r, 0) {
			return
		}
	}
}

// OrderIndex returns a block's preorder position in the document.
func (d Document) OrderIndex(id BlockID) (int, bool) {
	idx, found := -1, false
	i := 0
	d.walk(func(cur BlockID, _ int) bool {
		if cur == id {
			idx, found = i, true
			return false
		}
		i++
		return true
	})
	return idx, found
}

// Compare orders two blocks by document position: -1 when a precedes b,
// +1 when it follows, 0 when equal or either id is unknown.
func (d Document) Compare(a, b BlockID) int {
	if a == b {
		return 0
	}
	ai, aok := d.OrderIndex(a)
	bi, bok := d.OrderIndex(b)
	if !aok || !bok {
		return 0
	}
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// subtree returns id and all its descendants in preorder.
func (d Document) subtree(id BlockID) []BlockID {
	var out []BlockID
	var visit func(id BlockID)
	visit = func(id BlockID) {
		b, ok := d.blocks[id]
		if !ok {
			return
		}
		out = append(out, id)
		for _, c := range b.Children {
			visit(c)
		}
	}
	visit(id)
	return out
}

// height returns the number of levels in id's subtree (1 for a leaf).
func (d Document) height(id BlockID) int {
	b, ok := d.blocks[id]
	if !ok {
		return 0
	}
	h := 0
	for _, c := range b.Children {
		h = max(h, d.height(c))
	}
	return h + 1
}

// inSubtree reports whether id lies within root's subtree (including root
// itself).
func (d Document) inSubtree(id, root BlockID) bool {
	for {
		if id == root {
			return true
		}
		p, ok := d.parent[id]
		if !ok {
			return false
		}
		id = p
	}
}

// === Copying ===

// Clone returns a fully independent deep copy: fresh maps, fresh blocks,
// fresh child and run slices. Used for history snapshots and external
// hand-off.
func (d Document) Clone() Document {
	nd := Document{
		roots:    make([]BlockID, len(d.roots)),
		blocks:   make(map[BlockID]*Block, len(d.blocks)),
		parent:   make(map[BlockID]BlockID, len(d.parent)),
		maxDepth: d.maxDepth,
	}
	copy(nd.roots, d.roots)
	for id, b := range d.blocks {
		nd.blocks[id] = b.clone()
	}
	for c, p := range d.parent {
		nd.parent[c] = p
	}
	return nd
}

// mutate returns a shallow working copy: fresh containers sharing the stored
// blocks. Operations clone individual blocks before changing them.
func (d Document) mutate() Document {
	nd := Document{
		roots:    make([]BlockID, len(d.roots)),
		blocks:   make(map[BlockID]*Block, len(d.blocks)+1),
		parent:   make(map[BlockID]BlockID, len(d.parent)+1),
		maxDepth: d.maxDepth,
	}
	copy(nd.roots, d.roots)
	for id, b := range d.blocks {
		nd.blocks[id] = b
	}
	for c, p := range d.parent {
		nd.parent[c] = p
	}
	if nd.maxDepth <= 0 {
		nd.maxDepth = DefaultMaxDepth
	}
	return nd
}

// editBlock clones a stored block into the working copy and returns it for
// modification. Must only be called on documents produced by mutate.
func (d *Document) editBlock(id BlockID) *Block {
	b := d.blocks[id].clone()
	d.blocks[id] = b
	return b
}

// === Validation ===

// Validate checks every store invariant: resolvable single-parent
// references, acyclic bounded-depth structure, normalized runs on
// text-bearing blocks, no runs on structural blocks, no orphans, at least
// one root.
func (d Document) Validate() error {
	if len(d.roots) == 0 {
		return fmt.Errorf("document has no root blocks: %w", ErrRejected)
	}
	seen := make(map[BlockID]bool, len(d.blocks))
	var visit func(id BlockID, depth int) error
	visit = func(id BlockID, depth int) error {
		b, ok := d.blocks[id]
		if !ok {
			return fmt.Errorf("dangling reference %s: %w", id, ErrNotFound)
		}
		if seen[id] {
			return fmt.Errorf("block %s referenced more than once: %w", id, ErrCycle)
		}
		seen[id] = true
		if depth >= d.MaxDepth() {
			return fmt.Errorf("block %s at depth %d: %w", id, depth, ErrDepthExceeded)
		}
		if !b.Kind.Valid() {
			return fmt.Errorf("block %s has unknown kind: %w", id, ErrRejected)
		}
		if b.Kind.TextBearing() {
			if !richtext.Normalized(b.Runs) {
				return fmt.Errorf("block %s runs not normalized: %w", id, ErrRejected)
			}
		} else if len(b.Runs) != 0 {
			return fmt.Errorf("structural block %s carries runs: %w", id, ErrRejected)
		}
		for _, c := range b.Children {
			if p, ok := d.parent[c]; !ok || p != id {
				return fmt.Errorf("parent index mismatch for %s: %w", c, ErrRejected)
			}
			if err := visit(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range d.roots {
		if _, isChild := d.parent[r]; isChild {
			return fmt.Errorf("root %s also referenced as a child: %w", r, ErrRejected)
		}
		if err := visit(r, 0); err != nil {
			return err
		}
	}
	if len(seen) != len(d.blocks) {
		return fmt.Errorf("%d orphaned blocks: %w", len(d.blocks)-len(seen), ErrRejected)
	}
	return nil
}

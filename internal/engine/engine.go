package engine

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/richtext"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/event"
)

// Re-export commonly used types for convenience.
type (
	// Document is the immutable block tree.
	Document = document.Document

	// Block is one node of the tree.
	Block = document.Block

	// BlockID identifies a block.
	BlockID = document.BlockID

	// Kind identifies a block's type.
	Kind = document.Kind

	// Run is a stretch of text carrying one mark set.
	Run = richtext.Run

	// Runs is a block's normalized rich text content.
	Runs = richtext.Runs

	// Mark is a single formatting attribute.
	Mark = richtext.Mark

	// Marks is a run's set of formatting attributes.
	Marks = richtext.Marks

	// MarkType identifies a mark.
	MarkType = richtext.MarkType

	// Selection is the editing focus.
	Selection = selection.Selection

	// Position addresses a rune offset inside a block.
	Position = selection.Position
)

// Re-export constants.
const (
	KindParagraph    = document.KindParagraph
	KindHeading1     = document.KindHeading1
	KindHeading2     = document.KindHeading2
	KindHeading3     = document.KindHeading3
	KindQuote        = document.KindQuote
	KindListItem     = document.KindListItem
	KindToggle       = document.KindToggle
	KindBulletList   = document.KindBulletList
	KindNumberedList = document.KindNumberedList
	KindColumnList   = document.KindColumnList
	KindColumn       = document.KindColumn
	KindDivider      = document.KindDivider
	KindImage        = document.KindImage

	MarkBold          = richtext.MarkBold
	MarkItalic        = richtext.MarkItalic
	MarkUnderline     = richtext.MarkUnderline
	MarkStrikethrough = richtext.MarkStrikethrough
	MarkCode          = richtext.MarkCode
	MarkLink          = richtext.MarkLink
)

// Logger is the logging surface the session uses for operation tracing.
type Logger interface {
	Debug(msg string, args ...any)
}

// Stats is a point-in-time snapshot of session state.
type Stats struct {
	Blocks    int
	Roots     int
	UndoDepth int
	RedoDepth int
	Selection string
}

// Session is the mutable aggregate over the pure engine packages: the live
// document, the live selection, the undo/redo timeline and the event bus.
//
// All methods are safe for concurrent use; a single mutex serializes them.
// Every mutating operation follows one pipeline: validate and apply the pure
// document operation, adjust the selection across it, commit the new state
// to history, then publish change events. Events go out after the lock is
// released, so handlers may query the session.
type Session struct {
	mu   sync.Mutex
	doc  document.Document
	sel  selection.Selection
	hist *history.History

	bus    *event.Bus
	logger Logger

	readOnly   bool
	maxDepth   int
	maxEntries int
	quiet      time.Duration
	clock      history.Clock

	initDoc *document.Document
}

// New creates a session. Without WithDocument it starts with a single empty
// paragraph.
func New(opts ...Option) *Session {
	s := &Session{
		maxDepth:   DefaultMaxDepth,
		maxEntries: DefaultMaxUndoEntries,
		quiet:      DefaultQuietInterval,
		clock:      history.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.initDoc != nil {
		s.doc = s.initDoc.WithMaxDepth(s.maxDepth)
		s.initDoc = nil
	} else {
		s.doc = document.New(document.KindParagraph).WithMaxDepth(s.maxDepth)
	}
	if roots := s.doc.Roots(); len(roots) > 0 {
		s.sel = selection.CaretAt(roots[0], 0)
	}

	s.hist = history.New(s.doc, s.sel,
		history.WithMaxEntries(s.maxEntries),
		history.WithQuietInterval(s.quiet),
		history.WithClock(s.clock),
		history.WithFlushNotify(s.batchFlushed),
	)
	return s
}

// ============================================================================
// Block Operations
// ============================================================================

// InsertBlock creates an empty block of the given kind under parent at the
// child index; an empty parent id inserts at the root level. It returns the
// new block's id.
func (s *Session) InsertBlock(parent BlockID, index int, kind Kind) (BlockID, error) {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return "", ErrReadOnly
	}
	nd, id, err := s.doc.Insert(parent, index, document.NewBlock(kind))
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterInsert(s.sel, id),
		history.OpInsert, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return id, nil
}

// InsertBlockAfter creates an empty block of the given kind as the next
// sibling of ref.
func (s *Session) InsertBlockAfter(ref BlockID, kind Kind) (BlockID, error) {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return "", ErrReadOnly
	}
	nd, id, err := s.doc.InsertAfter(ref, document.NewBlock(kind))
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterInsert(s.sel, id),
		history.OpInsert, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return id, nil
}

// DeleteBlock removes a block with its whole subtree. Focus is requested on
// the nearest surviving neighbor.
func (s *Session) DeleteBlock(id BlockID) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, res, err := s.doc.Delete(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var focus *event.FocusRequest
	if res.Focus != "" {
		focus = &event.FocusRequest{Block: string(res.Focus)}
	}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterDelete(s.sel, res),
		history.OpDelete, id, res.Removed, focus)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// MoveBlock reattaches a block under parent at the child index; an empty
// parent id moves it to the root level.
func (s *Session) MoveBlock(id, parent BlockID, index int) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.Move(id, parent, index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterMove(s.sel, id),
		history.OpMove, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// SplitBlock cuts a text-bearing block in two at a rune offset and returns
// the new block's id. Focus is requested at the start of the new block.
func (s *Session) SplitBlock(id BlockID, offset int) (BlockID, error) {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return "", ErrReadOnly
	}
	nd, res, err := s.doc.Split(id, offset)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	focus := &event.FocusRequest{Block: string(res.NewID)}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterSplit(s.sel, id, res),
		history.OpSplit, id, []BlockID{id, res.NewID}, focus)
	s.mu.Unlock()

	s.publish(evs)
	return res.NewID, nil
}

// MergeWithPrevious joins a text-bearing block onto its previous sibling and
// reports whether a merge happened. A block with no previous sibling merges
// with nothing: merged is false, nothing is committed. Focus is requested on
// the survivor at the boundary where the merged text begins.
func (s *Session) MergeWithPrevious(id BlockID) (bool, error) {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return false, ErrReadOnly
	}
	nd, res, err := s.doc.MergeWithPrevious(id)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !res.Merged {
		s.mu.Unlock()
		return false, nil
	}
	focus := &event.FocusRequest{Block: string(res.Into), Offset: res.Boundary}
	evs := s.commitStructuralLocked(nd, selection.AdjustAfterMerge(s.sel, id, res),
		history.OpMerge, res.Into, []BlockID{res.Into, id}, focus)
	s.mu.Unlock()

	s.publish(evs)
	return true, nil
}

// TransformBlock changes a block's kind, wrapping or unwrapping list
// containers as document.Transform requires.
func (s *Session) TransformBlock(id BlockID, kind Kind) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.Transform(id, kind)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpTransform, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// IndentBlock nests a block under its previous sibling.
func (s *Session) IndentBlock(id BlockID) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.Indent(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpIndent, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// OutdentBlock lifts a block to its parent's level, after the parent.
func (s *Session) OutdentBlock(id BlockID) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.Outdent(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpOutdent, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// SetCollapsed folds or unfolds a toggle block.
func (s *Session) SetCollapsed(id BlockID, collapsed bool) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.SetCollapsed(id, collapsed)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpToggle, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// SetImage replaces an image block's source and caption.
func (s *Session) SetImage(id BlockID, source string, caption Runs) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.SetImage(id, source, caption)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpImage, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// SetColumnWidth sets a column block's width ratio.
func (s *Session) SetColumnWidth(id BlockID, width float64) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.SetWidth(id, width)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitStructuralLocked(nd, s.sel, history.OpWidth, id, []BlockID{id}, nil)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// ============================================================================
// Text Operations
// ============================================================================

// UpdateBlockRuns replaces a text-bearing block's whole content. Consecutive
// text edits on the same block batch into one undo entry.
func (s *Session) UpdateBlockRuns(id BlockID, runs Runs) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd, err := s.doc.UpdateRuns(id, runs)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitTextLocked(nd, s.sel, history.OpText, id)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// InsertText inserts plain text at a rune offset, inheriting the marks
// active there. Carets in the block at or past the offset shift right.
func (s *Session) InsertText(id BlockID, offset int, text string) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	b, ok := s.doc.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("insert text %s: %w", id, document.ErrNotFound)
	}
	if text == "" {
		s.mu.Unlock()
		return nil
	}
	n := richtext.Length(b.Runs)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	nd, err := s.doc.UpdateRuns(id, richtext.Insert(b.Runs, offset, text))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	sel := shiftAfterTextInsert(s.sel, id, offset, utf8.RuneCountInString(text))
	evs := s.commitTextLocked(nd, sel, history.OpText, id)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// DeleteTextRange removes the runes in [start, end). Offsets are clamped and
// may arrive in either order; an empty span is a no-op. Carets past the span
// shift left, carets inside it land at its start.
func (s *Session) DeleteTextRange(id BlockID, start, end int) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	b, ok := s.doc.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete text %s: %w", id, document.ErrNotFound)
	}
	start, end = clampSpan(start, end, richtext.Length(b.Runs))
	if start == end {
		s.mu.Unlock()
		return nil
	}
	nd, err := s.doc.UpdateRuns(id, richtext.DeleteRange(b.Runs, start, end))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	sel := shiftAfterTextDelete(s.sel, id, start, end)
	evs := s.commitTextLocked(nd, sel, history.OpText, id)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// ApplyMark applies a mark across [start, end). Formatting batches
// separately from text edits.
func (s *Session) ApplyMark(id BlockID, start, end int, mark Mark) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	b, ok := s.doc.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("apply mark %s: %w", id, document.ErrNotFound)
	}
	start, end = clampSpan(start, end, richtext.Length(b.Runs))
	if start == end {
		s.mu.Unlock()
		return nil
	}
	nd, err := s.doc.UpdateRuns(id, richtext.Apply(b.Runs, start, end, mark))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitTextLocked(nd, s.sel, history.OpFormat, id)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// RemoveMark strips marks of one type across [start, end).
func (s *Session) RemoveMark(id BlockID, start, end int, t MarkType) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	b, ok := s.doc.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove mark %s: %w", id, document.ErrNotFound)
	}
	start, end = clampSpan(start, end, richtext.Length(b.Runs))
	if start == end {
		s.mu.Unlock()
		return nil
	}
	nd, err := s.doc.UpdateRuns(id, richtext.Remove(b.Runs, start, end, t))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	evs := s.commitTextLocked(nd, s.sel, history.OpFormat, id)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// ============================================================================
// History
// ============================================================================

// Undo restores the previous recorded state. Any open text batch commits
// first, so a typing burst undoes as one unit. It reports whether a state
// was restored.
func (s *Session) Undo() bool {
	s.mu.Lock()
	ent, ok := s.hist.Undo()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc = ent.Doc
	s.sel = selection.Resolve(ent.Doc, ent.Sel)
	evs := s.restoredLocked("undo")
	s.mu.Unlock()

	s.publish(evs)
	return true
}

// Redo restores the next recorded state. It reports whether a state was
// restored.
func (s *Session) Redo() bool {
	s.mu.Lock()
	ent, ok := s.hist.Redo()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc = ent.Doc
	s.sel = selection.Resolve(ent.Doc, ent.Sel)
	evs := s.restoredLocked("redo")
	s.mu.Unlock()

	s.publish(evs)
	return true
}

// CanUndo reports whether Undo would restore an earlier state.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether Redo would restore a later state.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// FlushBatch commits any open text batch immediately.
func (s *Session) FlushBatch() {
	if !s.hist.Flush() {
		return
	}
	s.publish([]event.Event{event.New(event.TopicHistoryChanged, event.HistoryChange{
		UndoDepth: s.hist.UndoDepth(),
		RedoDepth: s.hist.RedoDepth(),
	})})
}

// ============================================================================
// Selection
// ============================================================================

// Select replaces the selection, repaired against the live document, and
// returns what was installed. Selection moves are not recorded in history.
func (s *Session) Select(sel Selection) Selection {
	s.mu.Lock()
	s.sel = selection.Resolve(s.doc, sel)
	out := s.sel.Clone()
	evs := []event.Event{event.New(event.TopicSelectionChanged, event.SelectionChange{
		Selection: s.sel.String(),
	})}
	s.mu.Unlock()

	s.publish(evs)
	return out
}

// SetCaret places a caret, clamped into the given block.
func (s *Session) SetCaret(id BlockID, offset int) Selection {
	return s.Select(selection.CaretAt(id, offset))
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

// ============================================================================
// Queries
// ============================================================================

// Document returns a deep copy of the live document. Renderers draw from the
// copy without holding the session lock.
func (s *Session) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Block returns a copy of one block.
func (s *Session) Block(id BlockID) (Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Get(id)
}

// PlainText returns a block's text without formatting.
func (s *Session) PlainText(id BlockID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.PlainText(id)
}

// AvailableTransforms lists the kinds a block of the given kind may become.
func (s *Session) AvailableTransforms(kind Kind) []Kind {
	return document.AvailableTransforms(kind)
}

// ReadOnly reports whether mutating operations are rejected.
func (s *Session) ReadOnly() bool { return s.readOnly }

// Stats returns a snapshot of session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Blocks:    s.doc.Len(),
		Roots:     len(s.doc.Roots()),
		UndoDepth: s.hist.UndoDepth(),
		RedoDepth: s.hist.RedoDepth(),
		Selection: s.sel.String(),
	}
}

// ============================================================================
// Persistence Bridge
// ============================================================================

// ReplaceDocument swaps in a different document wholesale, as after loading
// a file. The replacement is validated first and committed as a single
// replace entry; the caret moves to the start of the first root.
func (s *Session) ReplaceDocument(doc Document) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}
	nd := doc.Clone().WithMaxDepth(s.maxDepth)
	if err := nd.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	var sel selection.Selection
	var focus *event.FocusRequest
	if roots := nd.Roots(); len(roots) > 0 {
		sel = selection.CaretAt(roots[0], 0)
		focus = &event.FocusRequest{Block: string(roots[0])}
	}
	evs := s.commitStructuralLocked(nd, sel, history.OpReplace, "", nil, focus)
	s.mu.Unlock()

	s.publish(evs)
	return nil
}

// ============================================================================
// Internal
// ============================================================================

// commitStructuralLocked installs the new state, records it as an immediate
// history entry, and assembles the events to publish once the lock drops.
func (s *Session) commitStructuralLocked(doc document.Document, sel selection.Selection, op history.OpKind, block BlockID, touched []BlockID, focus *event.FocusRequest) []event.Event {
	s.doc = doc
	s.sel = selection.Resolve(doc, sel)
	s.hist.CommitStructural(doc, s.sel, op, block)
	s.debugf("committed", "op", op.String(), "block", string(block))
	return s.changedLocked(op.String(), touched, focus)
}

// commitTextLocked installs the new state and records it through the
// batching path.
func (s *Session) commitTextLocked(doc document.Document, sel selection.Selection, op history.OpKind, id BlockID) []event.Event {
	s.doc = doc
	s.sel = selection.Resolve(doc, sel)
	s.hist.CommitText(doc, s.sel, op, id)
	return s.changedLocked(op.String(), []BlockID{id}, nil)
}

// changedLocked assembles the standard event set after a mutation.
func (s *Session) changedLocked(op string, touched []BlockID, focus *event.FocusRequest) []event.Event {
	evs := []event.Event{
		event.New(event.TopicDocumentChanged, event.DocumentChange{
			Op:     op,
			Blocks: idStrings(touched),
		}),
		event.New(event.TopicSelectionChanged, event.SelectionChange{
			Selection: s.sel.String(),
		}),
		event.New(event.TopicHistoryChanged, event.HistoryChange{
			UndoDepth: s.hist.UndoDepth(),
			RedoDepth: s.hist.RedoDepth(),
		}),
	}
	if focus != nil {
		evs = append(evs, event.New(event.TopicFocusRequested, *focus))
	}
	return evs
}

// restoredLocked assembles events after history restored a snapshot. The
// whole document may have changed, so no touched ids are reported; focus
// follows the restored selection.
func (s *Session) restoredLocked(op string) []event.Event {
	var focus *event.FocusRequest
	if p, ok := s.sel.Head(); ok {
		focus = &event.FocusRequest{Block: string(p.Block), Offset: p.Offset}
	}
	return s.changedLocked(op, nil, focus)
}

// batchFlushed publishes the deadline commit of a text batch. It runs on the
// timer goroutine and takes no session lock; history serializes its own
// depth queries.
func (s *Session) batchFlushed(ent history.Entry) {
	s.debugf("batch flushed", "op", ent.Op.String(), "block", string(ent.Block))
	s.publish([]event.Event{
		event.New(event.TopicHistoryBatchFlushed, event.BatchFlush{
			Block: string(ent.Block),
			Op:    ent.Op.String(),
		}),
		event.New(event.TopicHistoryChanged, event.HistoryChange{
			UndoDepth: s.hist.UndoDepth(),
			RedoDepth: s.hist.RedoDepth(),
		}),
	})
}

// publish delivers events to the bus, if one is attached. Callers must not
// hold the session lock.
func (s *Session) publish(evs []event.Event) {
	if s.bus == nil {
		return
	}
	for _, e := range evs {
		s.bus.Publish(e)
	}
}

func (s *Session) debugf(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func idStrings(ids []BlockID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// clampSpan bounds a rune span to [0, n], swapping inverted endpoints.
func clampSpan(start, end, n int) (int, int) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

// shiftAfterTextInsert moves caret offsets in the edited block right past
// the insertion point. An insertion at the caret pushes it after the new
// text, which is what typing expects.
func shiftAfterTextInsert(sel selection.Selection, id BlockID, at, n int) selection.Selection {
	remap := func(p selection.Position) selection.Position {
		if p.Block == id && p.Offset >= at {
			p.Offset += n
		}
		return p
	}
	switch sel.Kind {
	case selection.KindCaret:
		return selection.Caret(remap(sel.Anchor))
	case selection.KindRange:
		return selection.Range(remap(sel.Anchor), remap(sel.Focus))
	default:
		return sel
	}
}

// shiftAfterTextDelete moves caret offsets in the edited block left across
// the removed span; offsets inside the span land at its start.
func shiftAfterTextDelete(sel selection.Selection, id BlockID, start, end int) selection.Selection {
	remap := func(p selection.Position) selection.Position {
		if p.Block != id || p.Offset <= start {
			return p
		}
		if p.Offset <= end {
			p.Offset = start
		} else {
			p.Offset -= end - start
		}
		return p
	}
	switch sel.Kind {
	case selection.KindCaret:
		return selection.Caret(remap(sel.Anchor))
	case selection.KindRange:
		return selection.Range(remap(sel.Anchor), remap(sel.Focus))
	default:
		return sel
	}
}

package tui

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/input/trigger"
)

// Editor binds terminal input to a session. It owns the key bindings, the
// scroll position and the status bar; all document semantics stay in the
// session.
//
// Key map:
//
//	runes            insert text (markdown triggers scan after each)
//	Enter            split block / insert paragraph after structural blocks
//	Backspace        delete grapheme, or merge with the previous block at 0
//	Delete           delete the grapheme after the caret
//	Tab / Shift-Tab  indent / outdent
//	arrows           move caret (Shift+Left/Right extends a range)
//	Home / End       start / end of block text
//	PgUp / PgDn      scroll without moving the caret
//	Ctrl-Z / Ctrl-Y  undo / redo
//	Ctrl-B / Ctrl-E / Ctrl-U
//	                 bold / italic / underline on the selected range
//	                 (Ctrl-I arrives as Tab on terminals, so italic sits
//	                 on Ctrl-E)
//	Ctrl-T           collapse or expand a toggle block
//	Ctrl-S           save
//	Ctrl-Q           quit
type Editor struct {
	sess  *engine.Session
	det   *trigger.Detector
	scr   *Screen
	theme Theme
	bus   *event.Bus

	width  int
	height int
	top    int

	// follow tracks whether the viewport chases the caret; paging turns it
	// off until the next caret move or focus request.
	follow atomic.Bool
	quit   atomic.Bool

	name   string
	notice string

	onSave func() error
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithScreen attaches the terminal screen. Without one the editor still
// handles events, which is how tests drive it.
func WithScreen(scr *Screen) EditorOption {
	return func(e *Editor) { e.scr = scr }
}

// WithTheme sets the style table.
func WithTheme(theme Theme) EditorOption {
	return func(e *Editor) { e.theme = theme }
}

// WithEditorBus subscribes the editor to focus requests and repaint-worthy
// engine events.
func WithEditorBus(bus *event.Bus) EditorOption {
	return func(e *Editor) { e.bus = bus }
}

// WithSaveFunc sets the Ctrl-S action.
func WithSaveFunc(fn func() error) EditorOption {
	return func(e *Editor) { e.onSave = fn }
}

// WithName sets the document name shown in the status bar.
func WithName(name string) EditorOption {
	return func(e *Editor) { e.name = name }
}

// NewEditor builds an editor over the session.
func NewEditor(sess *engine.Session, opts ...EditorOption) *Editor {
	e := &Editor{
		sess:  sess,
		det:   trigger.New(),
		theme: NewTheme(config.Default().UI),
		width: 80,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.follow.Store(true)

	if e.bus != nil {
		// Focus requests place the caret where the operation wants it;
		// batch flushes only need a status repaint.
		_, _ = e.bus.Subscribe(event.TopicFocusRequested, e.onFocus)
		_, _ = e.bus.Subscribe(event.TopicHistoryBatchFlushed, func(event.Event) { e.wake() })
	}
	return e
}

// Run drives the poll–handle–render loop until Quit or Ctrl-Q. The screen
// must be attached and initialized.
func (e *Editor) Run() error {
	if e.scr == nil {
		return fmt.Errorf("editor: no screen attached")
	}
	e.width, e.height = e.scr.Size()

	for !e.quit.Load() {
		e.Render()
		switch ev := e.scr.PollEvent().(type) {
		case *tcell.EventKey:
			e.HandleKey(ev)
		case *tcell.EventResize:
			e.width, e.height = ev.Size()
			e.scr.Sync()
		case *tcell.EventInterrupt:
			// Repaint pass.
		case nil:
			return nil
		}
	}
	return nil
}

// Quit stops the run loop. Safe to call from any goroutine.
func (e *Editor) Quit() {
	e.quit.Store(true)
	e.wake()
}

// SetTheme swaps the style table, for live configuration reloads.
func (e *Editor) SetTheme(theme Theme) {
	e.theme = theme
	e.wake()
}

// Render projects the document and draws the current window.
func (e *Editor) Render() {
	if e.scr == nil {
		return
	}
	lines := e.lines()
	if e.follow.Load() {
		e.scrollToCaret(lines)
	}
	e.scr.Draw(e.theme, lines, e.top, e.statusText())
}

// HandleKey translates one key event into engine operations.
func (e *Editor) HandleKey(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyCtrlS {
		e.notice = ""
	}
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		e.quit.Store(true)
	case tcell.KeyCtrlS:
		e.save()
	case tcell.KeyCtrlZ:
		e.sess.Undo()
		e.follow.Store(true)
	case tcell.KeyCtrlY:
		e.sess.Redo()
		e.follow.Store(true)
	case tcell.KeyCtrlB:
		e.toggleMark(engine.MarkBold)
	case tcell.KeyCtrlE:
		e.toggleMark(engine.MarkItalic)
	case tcell.KeyCtrlU:
		e.toggleMark(engine.MarkUnderline)
	case tcell.KeyCtrlT:
		e.toggleCollapse()
	case tcell.KeyTab:
		e.indent(false)
	case tcell.KeyBacktab:
		e.indent(true)
	case tcell.KeyEnter:
		e.split()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace()
	case tcell.KeyDelete:
		e.deleteForward()
	case tcell.KeyLeft:
		e.moveHorizontal(-1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyRight:
		e.moveHorizontal(1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyUp:
		e.moveVertical(-1)
	case tcell.KeyDown:
		e.moveVertical(1)
	case tcell.KeyHome:
		e.moveLineEdge(0)
	case tcell.KeyEnd:
		e.moveLineEdge(-1)
	case tcell.KeyPgUp:
		e.page(-1)
	case tcell.KeyPgDn:
		e.page(1)
	case tcell.KeyRune:
		e.insertRune(ev.Rune())
	}
}

// ============================================================================
// Key actions
// ============================================================================

func (e *Editor) insertRune(r rune) {
	sel := e.sess.Selection()
	if sel.Kind == selection.KindRange {
		s, en := orderedOffsets(sel)
		if err := e.sess.DeleteTextRange(sel.Anchor.Block, s, en); err != nil {
			return
		}
	}
	pos, ok := e.caret()
	if !ok {
		return
	}
	if err := e.sess.InsertText(pos.Block, pos.Offset, string(r)); err != nil {
		return
	}
	_, _ = e.det.Apply(e.sess, pos.Block)
	e.follow.Store(true)
}

func (e *Editor) split() {
	pos, ok := e.caret()
	if !ok {
		return
	}
	blk, found := e.sess.Block(pos.Block)
	if !found {
		return
	}
	e.follow.Store(true)

	if !blk.Kind.TextBearing() {
		if id, err := e.sess.InsertBlockAfter(pos.Block, engine.KindParagraph); err == nil {
			e.sess.SetCaret(id, 0)
		}
		return
	}
	_, _ = e.sess.SplitBlock(pos.Block, pos.Offset)
}

func (e *Editor) backspace() {
	sel := e.sess.Selection()
	if sel.Kind == selection.KindRange {
		s, en := orderedOffsets(sel)
		_ = e.sess.DeleteTextRange(sel.Anchor.Block, s, en)
		e.follow.Store(true)
		return
	}
	pos, ok := e.caret()
	if !ok {
		return
	}
	e.follow.Store(true)

	if pos.Offset > 0 {
		plain := e.sess.PlainText(pos.Block)
		_ = e.sess.DeleteTextRange(pos.Block, prevGraphemeOffset(plain, pos.Offset), pos.Offset)
		return
	}

	blk, found := e.sess.Block(pos.Block)
	if !found {
		return
	}
	if !blk.Kind.TextBearing() {
		_ = e.sess.DeleteBlock(pos.Block)
		return
	}
	merged, err := e.sess.MergeWithPrevious(pos.Block)
	if merged {
		return
	}
	if err != nil && !errors.Is(err, document.ErrNotTextBearing) {
		return
	}
	// No text-bearing predecessor; an empty block backspaces itself away.
	if e.sess.PlainText(pos.Block) == "" {
		_ = e.sess.DeleteBlock(pos.Block)
	}
}

func (e *Editor) deleteForward() {
	pos, ok := e.caret()
	if !ok {
		return
	}
	plain := e.sess.PlainText(pos.Block)
	if pos.Offset >= utf8.RuneCountInString(plain) {
		return
	}
	_ = e.sess.DeleteTextRange(pos.Block, pos.Offset, nextGraphemeOffset(plain, pos.Offset))
	e.follow.Store(true)
}

func (e *Editor) indent(out bool) {
	pos, ok := e.caret()
	if !ok {
		return
	}
	var err error
	if out {
		err = e.sess.OutdentBlock(pos.Block)
	} else {
		err = e.sess.IndentBlock(pos.Block)
	}
	// Structural rejections are silent; the affordance simply has no
	// effect.
	_ = err
	e.follow.Store(true)
}

func (e *Editor) toggleMark(t engine.MarkType) {
	sel := e.sess.Selection()
	if sel.Kind != selection.KindRange {
		return
	}
	s, en := orderedOffsets(sel)
	if s == en {
		return
	}
	id := sel.Anchor.Block
	blk, found := e.sess.Block(id)
	if !found {
		return
	}
	if richtext.MarksAt(blk.Runs, s+1).Has(t) {
		_ = e.sess.RemoveMark(id, s, en, t)
	} else {
		_ = e.sess.ApplyMark(id, s, en, engine.Mark{Type: t})
	}
}

func (e *Editor) toggleCollapse() {
	pos, ok := e.caret()
	if !ok {
		return
	}
	blk, found := e.sess.Block(pos.Block)
	if !found || blk.Kind != engine.KindToggle {
		return
	}
	_ = e.sess.SetCollapsed(pos.Block, !blk.Collapsed)
}

func (e *Editor) moveHorizontal(dir int, extend bool) {
	sel := e.sess.Selection()
	e.follow.Store(true)

	if sel.Kind == selection.KindRange && !extend {
		// Collapse to the range edge in the travel direction.
		s, en := orderedOffsets(sel)
		if dir < 0 {
			e.sess.SetCaret(sel.Anchor.Block, s)
		} else {
			e.sess.SetCaret(sel.Anchor.Block, en)
		}
		return
	}

	pos, ok := e.caret()
	if !ok {
		e.caretToFirstLine()
		return
	}
	plain := e.sess.PlainText(pos.Block)
	n := utf8.RuneCountInString(plain)

	target := pos
	switch {
	case dir < 0 && pos.Offset > 0:
		target.Offset = prevGraphemeOffset(plain, pos.Offset)
	case dir > 0 && pos.Offset < n:
		target.Offset = nextGraphemeOffset(plain, pos.Offset)
	case dir < 0:
		if prev, found := e.neighborLine(pos.Block, -1); found {
			target = engine.Position{
				Block:  prev,
				Offset: utf8.RuneCountInString(e.sess.PlainText(prev)),
			}
		}
	default:
		if next, found := e.neighborLine(pos.Block, 1); found {
			target = engine.Position{Block: next, Offset: 0}
		}
	}

	if !extend {
		e.sess.SetCaret(target.Block, target.Offset)
		return
	}
	anchor := sel.Anchor
	if target.Block != anchor.Block {
		// Ranges stay inside one block; extension stops at its edge.
		return
	}
	e.sess.Select(selection.Range(anchor, target))
}

func (e *Editor) moveVertical(dir int) {
	e.follow.Store(true)
	lines := e.lines()
	cur := FindCaretLine(lines)
	if cur < 0 {
		e.caretToFirstLine()
		return
	}
	next := cur + dir
	if next < 0 || next >= len(lines) {
		return
	}
	offset := 0
	if pos, ok := e.caret(); ok {
		offset = pos.Offset
	}
	e.sess.SetCaret(lines[next].Block, offset)
}

// moveLineEdge puts the caret at offset, or at the end of the block's text
// when offset is negative.
func (e *Editor) moveLineEdge(offset int) {
	pos, ok := e.caret()
	if !ok {
		return
	}
	if offset < 0 {
		offset = utf8.RuneCountInString(e.sess.PlainText(pos.Block))
	}
	e.sess.SetCaret(pos.Block, offset)
	e.follow.Store(true)
}

func (e *Editor) page(dir int) {
	rows := e.height - 1
	if rows < 1 {
		rows = 1
	}
	e.top += dir * rows
	if max := len(e.lines()) - 1; e.top > max {
		e.top = max
	}
	if e.top < 0 {
		e.top = 0
	}
	e.follow.Store(false)
}

func (e *Editor) save() {
	if e.onSave == nil {
		return
	}
	if err := e.onSave(); err != nil {
		e.notice = fmt.Sprintf("save failed: %v", err)
		return
	}
	e.notice = "saved"
}

// ============================================================================
// Support
// ============================================================================

func (e *Editor) onFocus(ev event.Event) {
	req, ok := ev.Payload.(event.FocusRequest)
	if !ok {
		return
	}
	e.follow.Store(true)
	// Undo and redo request focus at the head of the selection they just
	// restored; placing a caret there would collapse a restored range, so
	// only move when the request points somewhere else.
	pos, hasHead := e.sess.Selection().Head()
	if !hasHead || string(pos.Block) != req.Block || pos.Offset != req.Offset {
		e.sess.SetCaret(engine.BlockID(req.Block), req.Offset)
	}
	e.wake()
}

func (e *Editor) wake() {
	if e.scr != nil {
		e.scr.Interrupt()
	}
}

func (e *Editor) caret() (engine.Position, bool) {
	return e.sess.Selection().Head()
}

func (e *Editor) lines() []Line {
	return Layout(e.sess.Document(), e.sess.Selection(), e.width)
}

func (e *Editor) caretToFirstLine() {
	if lines := e.lines(); len(lines) > 0 {
		e.sess.SetCaret(lines[0].Block, 0)
	}
}

// neighborLine returns the block of the visible line dir steps away from the
// block's own line.
func (e *Editor) neighborLine(id engine.BlockID, dir int) (engine.BlockID, bool) {
	lines := e.lines()
	for i, ln := range lines {
		if ln.Block != id {
			continue
		}
		j := i + dir
		if j < 0 || j >= len(lines) {
			return "", false
		}
		return lines[j].Block, true
	}
	return "", false
}

func (e *Editor) scrollToCaret(lines []Line) {
	i := FindCaretLine(lines)
	if i < 0 {
		return
	}
	rows := e.height - 1
	if rows < 1 {
		rows = 1
	}
	if i < e.top {
		e.top = i
	}
	if i >= e.top+rows {
		e.top = i - rows + 1
	}
	if e.top < 0 {
		e.top = 0
	}
}

func (e *Editor) statusText() string {
	stats := e.sess.Stats()
	name := e.name
	if name == "" {
		name = "untitled"
	}
	s := fmt.Sprintf(" %s · %d blocks · undo %d · %s", name, stats.Blocks, stats.UndoDepth, stats.Selection)
	if e.notice != "" {
		s += " · " + e.notice
	}
	if e.sess.ReadOnly() {
		s += " · read-only"
	}
	return s
}

func orderedOffsets(sel engine.Selection) (int, int) {
	s, e := sel.Anchor.Offset, sel.Focus.Offset
	if s > e {
		s, e = e, s
	}
	return s, e
}

// prevGraphemeOffset returns the rune offset of the grapheme cluster start
// preceding off.
func prevGraphemeOffset(s string, off int) int {
	gr := uniseg.NewGraphemes(s)
	start := 0
	for gr.Next() {
		end := start + len(gr.Runes())
		if end >= off {
			if end == off {
				return start
			}
			break
		}
		start = end
	}
	if off > 0 {
		return off - 1
	}
	return 0
}

// nextGraphemeOffset returns the rune offset just past the grapheme cluster
// starting at off.
func nextGraphemeOffset(s string, off int) int {
	gr := uniseg.NewGraphemes(s)
	start := 0
	for gr.Next() {
		end := start + len(gr.Runes())
		if start >= off {
			return end
		}
		start = end
	}
	return off + 1
}

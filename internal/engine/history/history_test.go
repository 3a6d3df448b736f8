package history

import (
	"testing"
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
	"github.com/dshills/inkwell/internal/engine/selection"
)

const quiet = 100 * time.Millisecond

func seedDoc(t *testing.T, text string) (document.Document, document.BlockID) {
	t.Helper()
	d := document.NewWithBlock(document.NewTextBlock(document.KindParagraph, text))
	return d, d.Roots()[0]
}

func setText(t *testing.T, d document.Document, id document.BlockID, text string) document.Document {
	t.Helper()
	nd, err := d.UpdateRuns(id, richtext.Plain(text))
	if err != nil {
		t.Fatalf("update runs: %v", err)
	}
	return nd
}

func newTestHistory(t *testing.T, text string) (*History, *ManualClock, document.Document, document.BlockID) {
	t.Helper()
	d, id := seedDoc(t, text)
	clock := NewManualClock()
	h := New(d, selection.CaretAt(id, 0),
		WithClock(clock), WithQuietInterval(quiet))
	return h, clock, d, id
}

// Timeline Tests

func TestNewSeedsInitialEntry(t *testing.T) {
	h, _, _, _ := newTestHistory(t, "seed")

	if h.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", h.Len())
	}
	if h.CanUndo() {
		t.Error("fresh history should not undo")
	}
	if h.CanRedo() {
		t.Error("fresh history should not redo")
	}
	if h.UndoDepth() != 0 || h.RedoDepth() != 0 {
		t.Errorf("expected zero depths, got %d/%d", h.UndoDepth(), h.RedoDepth())
	}
}

func TestStructuralCommitAndUndo(t *testing.T) {
	h, _, d, id := newTestHistory(t, "one")
	d2 := setText(t, d, id, "two")

	h.CommitStructural(d2, selection.CaretAt(id, 3), OpReplace, id)
	if h.Len() != 2 || !h.CanUndo() {
		t.Fatalf("expected committed entry, len=%d", h.Len())
	}

	ent, ok := h.Undo()
	if !ok {
		t.Fatal("expected undo")
	}
	if got := ent.Doc.PlainText(id); got != "one" {
		t.Errorf("expected restored text %q, got %q", "one", got)
	}
	if ent.Op != OpInitial {
		t.Errorf("expected initial entry, got %s", ent.Op)
	}
	if !h.CanRedo() {
		t.Error("expected redo available after undo")
	}
}

func TestUndoAtEarliestEntry(t *testing.T) {
	h, _, _, _ := newTestHistory(t, "seed")

	if _, ok := h.Undo(); ok {
		t.Error("expected undo to report false at the earliest entry")
	}
}

func TestRedoAtNewestEntry(t *testing.T) {
	h, _, d, id := newTestHistory(t, "one")
	h.CommitStructural(setText(t, d, id, "two"), selection.CaretAt(id, 3), OpReplace, id)

	if _, ok := h.Redo(); ok {
		t.Error("expected redo to report false at the newest entry")
	}
}

func TestUndoRedoWalk(t *testing.T) {
	h, _, d, id := newTestHistory(t, "v0")
	d1 := setText(t, d, id, "v1")
	h.CommitStructural(d1, selection.CaretAt(id, 2), OpReplace, id)
	d2 := setText(t, d1, id, "v2")
	h.CommitStructural(d2, selection.CaretAt(id, 2), OpReplace, id)

	want := []string{"v1", "v0"}
	for i, w := range want {
		ent, ok := h.Undo()
		if !ok {
			t.Fatalf("undo %d: expected ok", i)
		}
		if got := ent.Doc.PlainText(id); got != w {
			t.Errorf("undo %d: expected %q, got %q", i, w, got)
		}
	}

	want = []string{"v1", "v2"}
	for i, w := range want {
		ent, ok := h.Redo()
		if !ok {
			t.Fatalf("redo %d: expected ok", i)
		}
		if got := ent.Doc.PlainText(id); got != w {
			t.Errorf("redo %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestNewCommitTruncatesRedoTail(t *testing.T) {
	h, _, d, id := newTestHistory(t, "v0")
	d1 := setText(t, d, id, "v1")
	h.CommitStructural(d1, selection.CaretAt(id, 2), OpReplace, id)
	if _, ok := h.Undo(); !ok {
		t.Fatal("expected undo")
	}

	h.CommitStructural(setText(t, d, id, "v1b"), selection.CaretAt(id, 3), OpReplace, id)
	if h.CanRedo() {
		t.Error("expected redo tail discarded after new commit")
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", h.Len())
	}
}

// Batching Tests

func TestTextEditsCoalesceIntoOneEntry(t *testing.T) {
	h, clock, d, id := newTestHistory(t, "")

	for i, text := range []string{"h", "he", "hello"} {
		d = setText(t, d, id, text)
		h.CommitText(d, selection.CaretAt(id, len(text)), OpText, id)
		if i < 2 {
			clock.Advance(quiet / 2)
		}
	}
	if h.Len() != 1 {
		t.Fatalf("expected batch still pending, len=%d", h.Len())
	}

	clock.Advance(quiet)
	if h.Len() != 2 {
		t.Fatalf("expected batch committed, len=%d", h.Len())
	}

	if _, ok := h.Undo(); !ok {
		t.Fatal("expected undo")
	}
	ent, ok := h.Redo()
	if !ok {
		t.Fatal("expected redo")
	}
	if got := ent.Doc.PlainText(id); got != "hello" {
		t.Errorf("expected batch to hold final text %q, got %q", "hello", got)
	}
}

func TestEditOnOtherBlockFlushesBatch(t *testing.T) {
	h, clock, d, id := newTestHistory(t, "first")
	d, id2, err := d.InsertAfter(id, document.NewTextBlock(document.KindParagraph, "second"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	h.CommitStructural(d, selection.CaretAt(id2, 0), OpInsert, id2)

	// Three edits on the first block, one on the second, three more on the
	// second: exactly two batch entries.
	for _, text := range []string{"f", "fi", "fir"} {
		d = setText(t, d, id, text)
		h.CommitText(d, selection.CaretAt(id, len(text)), OpText, id)
	}
	for _, text := range []string{"s", "se", "sec"} {
		d = setText(t, d, id2, text)
		h.CommitText(d, selection.CaretAt(id2, len(text)), OpText, id2)
	}
	clock.Advance(quiet * 2)

	// initial + insert + two text batches
	if h.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", h.Len())
	}

	ent, ok := h.Undo()
	if !ok {
		t.Fatal("expected undo")
	}
	if got := ent.Doc.PlainText(id); got != "fir" {
		t.Errorf("expected first batch text %q, got %q", "fir", got)
	}
	if got := ent.Doc.PlainText(id2); got != "second" {
		t.Errorf("expected second block untouched, got %q", got)
	}
}

func TestDifferentOpKindFlushesBatch(t *testing.T) {
	h, _, d, id := newTestHistory(t, "plain")

	d2 := setText(t, d, id, "plainer")
	h.CommitText(d2, selection.CaretAt(id, 7), OpText, id)
	h.CommitText(d2, selection.CaretAt(id, 7), OpFormat, id)

	// The text batch committed; the format batch is still open.
	if h.Len() != 2 {
		t.Errorf("expected text batch flushed, len=%d", h.Len())
	}
	if h.UndoDepth() != 2 {
		t.Errorf("expected undo depth 2 with open batch, got %d", h.UndoDepth())
	}

	h.Flush()
	if h.Len() != 3 {
		t.Errorf("expected format batch committed, len=%d", h.Len())
	}
}

func TestQuietIntervalRearmsOnEachEdit(t *testing.T) {
	h, clock, d, id := newTestHistory(t, "")

	d = setText(t, d, id, "a")
	h.CommitText(d, selection.CaretAt(id, 1), OpText, id)
	clock.Advance(quiet - time.Millisecond)

	d = setText(t, d, id, "ab")
	h.CommitText(d, selection.CaretAt(id, 2), OpText, id)
	clock.Advance(quiet - time.Millisecond)
	if h.Len() != 1 {
		t.Fatalf("expected batch still open, len=%d", h.Len())
	}

	clock.Advance(time.Millisecond)
	if h.Len() != 2 {
		t.Fatalf("expected batch committed on deadline, len=%d", h.Len())
	}
}

func TestUndoFlushesOpenBatch(t *testing.T) {
	h, _, d, id := newTestHistory(t, "base")

	d2 := setText(t, d, id, "based")
	h.CommitText(d2, selection.CaretAt(id, 5), OpText, id)
	if !h.CanUndo() {
		t.Fatal("open batch should be undoable")
	}

	ent, ok := h.Undo()
	if !ok {
		t.Fatal("expected undo")
	}
	if got := ent.Doc.PlainText(id); got != "base" {
		t.Errorf("expected pre-batch text %q, got %q", "base", got)
	}
	if h.Len() != 2 {
		t.Errorf("expected flushed batch in timeline, len=%d", h.Len())
	}
	if !h.CanRedo() {
		t.Error("flushed batch should be redoable")
	}
}

func TestTextEditDiscardsRedoTailImmediately(t *testing.T) {
	h, _, d, id := newTestHistory(t, "v0")
	d1 := setText(t, d, id, "v1")
	h.CommitStructural(d1, selection.CaretAt(id, 2), OpReplace, id)
	if _, ok := h.Undo(); !ok {
		t.Fatal("expected undo")
	}
	if !h.CanRedo() {
		t.Fatal("expected redo available")
	}

	h.CommitText(setText(t, d, id, "x"), selection.CaretAt(id, 1), OpText, id)
	if h.CanRedo() {
		t.Error("expected redo tail discarded while batch is still open")
	}
}

func TestBatchEntryKeepsLastEditTimestamp(t *testing.T) {
	h, clock, d, id := newTestHistory(t, "")

	d = setText(t, d, id, "a")
	h.CommitText(d, selection.CaretAt(id, 1), OpText, id)
	clock.Advance(quiet / 2)
	last := clock.Now()
	d = setText(t, d, id, "ab")
	h.CommitText(d, selection.CaretAt(id, 2), OpText, id)
	clock.Advance(quiet)

	if _, ok := h.Undo(); !ok {
		t.Fatal("expected undo")
	}
	ent, ok := h.Redo()
	if !ok {
		t.Fatal("expected redo")
	}
	if !ent.At.Equal(last) {
		t.Errorf("expected batch timestamp %v, got %v", last, ent.At)
	}
	if ent.Op != OpText || ent.Block != id {
		t.Errorf("expected text entry for %s, got %s on %s", id, ent.Op, ent.Block)
	}
}

func TestFlushNotifyFiresOnDeadlineOnly(t *testing.T) {
	d, id := seedDoc(t, "base")
	clock := NewManualClock()
	var notified []Entry
	h := New(d, selection.CaretAt(id, 0),
		WithClock(clock), WithQuietInterval(quiet),
		WithFlushNotify(func(e Entry) { notified = append(notified, e) }))

	// Forced flush via undo: no notification.
	h.CommitText(setText(t, d, id, "basex"), selection.CaretAt(id, 5), OpText, id)
	if _, ok := h.Undo(); !ok {
		t.Fatal("expected undo")
	}
	if len(notified) != 0 {
		t.Fatalf("expected no notification on forced flush, got %d", len(notified))
	}

	// Deadline flush: exactly one notification.
	h.CommitText(setText(t, d, id, "basey"), selection.CaretAt(id, 5), OpText, id)
	clock.Advance(quiet)
	if len(notified) != 1 {
		t.Fatalf("expected one notification, got %d", len(notified))
	}
	if got := notified[0].Doc.PlainText(id); got != "basey" {
		t.Errorf("expected notified entry text %q, got %q", "basey", got)
	}
}

func TestStaleDeadlineAfterFlushIsIgnored(t *testing.T) {
	h, clock, d, id := newTestHistory(t, "base")

	h.CommitText(setText(t, d, id, "base1"), selection.CaretAt(id, 5), OpText, id)
	h.Flush()
	if h.Len() != 2 {
		t.Fatalf("expected flushed entry, len=%d", h.Len())
	}

	// The original deadline passing must not commit anything twice.
	clock.Advance(quiet * 2)
	if h.Len() != 2 {
		t.Errorf("expected stale deadline ignored, len=%d", h.Len())
	}
}

// Eviction Tests

func TestEvictionDropsOldestEntries(t *testing.T) {
	d, id := seedDoc(t, "v0")
	h := New(d, selection.CaretAt(id, 0), WithMaxEntries(3))

	cur := d
	for _, text := range []string{"v1", "v2", "v3", "v4"} {
		cur = setText(t, cur, id, text)
		h.CommitStructural(cur, selection.CaretAt(id, 2), OpReplace, id)
	}

	if h.Len() != 3 {
		t.Fatalf("expected timeline bounded at 3, got %d", h.Len())
	}
	if h.UndoDepth() != 2 {
		t.Errorf("expected undo depth 2, got %d", h.UndoDepth())
	}

	want := []string{"v3", "v2"}
	for i, w := range want {
		ent, ok := h.Undo()
		if !ok {
			t.Fatalf("undo %d: expected ok", i)
		}
		if got := ent.Doc.PlainText(id); got != w {
			t.Errorf("undo %d: expected %q, got %q", i, w, got)
		}
	}
	if _, ok := h.Undo(); ok {
		t.Error("expected history exhausted")
	}
}

// Snapshot Independence Tests

func TestRestoredEntryIsIndependentCopy(t *testing.T) {
	h, _, d, id := newTestHistory(t, "original")
	h.CommitStructural(setText(t, d, id, "changed"), selection.CaretAt(id, 7), OpReplace, id)

	ent, ok := h.Undo()
	if !ok {
		t.Fatal("expected undo")
	}
	// Editing the restored copy must not leak into the timeline.
	if _, err := ent.Doc.UpdateRuns(id, richtext.Plain("mutated")); err != nil {
		t.Fatalf("update runs: %v", err)
	}

	again, ok := h.Redo()
	if !ok {
		t.Fatal("expected redo")
	}
	if got := again.Doc.PlainText(id); got != "changed" {
		t.Errorf("timeline corrupted: expected %q, got %q", "changed", got)
	}
}

// OpKind Tests

func TestOpKindNamesAndBatching(t *testing.T) {
	if OpText.String() != "text" || OpSplit.String() != "split" {
		t.Errorf("unexpected names: %s %s", OpText, OpSplit)
	}
	if !OpText.Batches() || !OpFormat.Batches() {
		t.Error("text and format kinds must batch")
	}
	for _, k := range []OpKind{OpInitial, OpInsert, OpDelete, OpMove, OpSplit, OpMerge, OpTransform, OpIndent, OpOutdent, OpToggle, OpImage, OpWidth, OpReplace} {
		if k.Batches() {
			t.Errorf("%s must not batch", k)
		}
	}
}

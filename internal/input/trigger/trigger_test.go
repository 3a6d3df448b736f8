package trigger

import (
	"errors"
	"testing"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
)

func seedSession(t *testing.T, opts ...engine.Option) (*engine.Session, engine.BlockID) {
	t.Helper()
	sess := engine.New(opts...)
	roots := sess.Document().Roots()
	if len(roots) != 1 {
		t.Fatalf("expected one root, got %d", len(roots))
	}
	return sess, roots[0]
}

// typeAndScan feeds text to the session one rune at a time, scanning after
// every insertion the way the editor does, and collects the rules that
// fired.
func typeAndScan(t *testing.T, d *Detector, sess *engine.Session, id engine.BlockID, text string) []Result {
	t.Helper()
	var fired []Result
	for _, r := range text {
		pos, ok := sess.Selection().Head()
		if !ok {
			t.Fatal("caret lost while typing")
		}
		if err := sess.InsertText(id, pos.Offset, string(r)); err != nil {
			t.Fatalf("insert %q: %v", r, err)
		}
		res, err := d.Apply(sess, id)
		if err != nil {
			t.Fatalf("scan after %q: %v", r, err)
		}
		if res.Fired {
			fired = append(fired, res)
		}
	}
	return fired
}

func assertRuns(t *testing.T, sess *engine.Session, id engine.BlockID, want engine.Runs) {
	t.Helper()
	blk, ok := sess.Block(id)
	if !ok {
		t.Fatalf("block %s gone", id)
	}
	if !richtext.Equal(blk.Runs, want) {
		t.Errorf("runs = %+v, want %+v", blk.Runs, want)
	}
}

func TestLineTriggers(t *testing.T) {
	tests := []struct {
		typed     string
		rule      string
		kind      engine.Kind
		container engine.Kind // parent wrapper, zero when none expected
		text      string
	}{
		{"# one", "heading_1", engine.KindHeading1, 0, "one"},
		{"## two", "heading_2", engine.KindHeading2, 0, "two"},
		{"### three", "heading_3", engine.KindHeading3, 0, "three"},
		{"> wise", "quote", engine.KindQuote, 0, "wise"},
		{"- item", "bulleted_list", engine.KindListItem, engine.KindBulletList, "item"},
		{"* item", "bulleted_list", engine.KindListItem, engine.KindBulletList, "item"},
		{"1. item", "numbered_list", engine.KindListItem, engine.KindNumberedList, "item"},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.typed, func(t *testing.T) {
			sess, root := seedSession(t)
			fired := typeAndScan(t, New(), sess, root, tt.typed)

			if len(fired) != 1 || fired[0].Rule != tt.rule {
				t.Fatalf("fired = %+v, want one %s", fired, tt.rule)
			}
			blk, _ := sess.Block(root)
			if blk.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", blk.Kind, tt.kind)
			}
			if got := sess.PlainText(root); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
			if tt.container != 0 {
				parent, ok := sess.Document().Parent(root)
				if !ok {
					t.Fatal("expected a list container parent")
				}
				pb, _ := sess.Block(parent)
				if pb.Kind != tt.container {
					t.Errorf("container = %v, want %v", pb.Kind, tt.container)
				}
			}
		})
	}
}

func TestDividerTrigger(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "---")

	if len(fired) != 1 || fired[0].Kind != engine.KindDivider {
		t.Fatalf("fired = %+v, want divider", fired)
	}
	blk, _ := sess.Block(root)
	if blk.Kind != engine.KindDivider {
		t.Errorf("kind = %v, want divider", blk.Kind)
	}
	if len(blk.Runs) != 0 {
		t.Errorf("divider kept text: %+v", blk.Runs)
	}
}

func TestLineTriggerNeedsLineStart(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "x# ")

	if len(fired) != 0 {
		t.Fatalf("fired = %+v, want none", fired)
	}
	blk, _ := sess.Block(root)
	if blk.Kind != engine.KindParagraph {
		t.Errorf("kind = %v, want paragraph", blk.Kind)
	}
}

func TestLineTriggersOnlyInParagraphs(t *testing.T) {
	sess, root := seedSession(t)
	if err := sess.TransformBlock(root, engine.KindQuote); err != nil {
		t.Fatalf("transform: %v", err)
	}

	fired := typeAndScan(t, New(), sess, root, "# ")
	if len(fired) != 0 {
		t.Fatalf("fired = %+v, want none", fired)
	}
	if got := sess.PlainText(root); got != "# " {
		t.Errorf("text = %q, want literal marker", got)
	}
}

func TestTypingContinuesAfterLineTrigger(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "# Title")

	if len(fired) != 1 {
		t.Fatalf("fired = %+v, want one", fired)
	}
	blk, _ := sess.Block(root)
	if blk.Kind != engine.KindHeading1 {
		t.Errorf("kind = %v, want heading_1", blk.Kind)
	}
	if got := sess.PlainText(root); got != "Title" {
		t.Errorf("text = %q, want Title", got)
	}
}

func TestInlineBold(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "say **hi**")

	if len(fired) != 1 || fired[0].Mark != engine.MarkBold {
		t.Fatalf("fired = %+v, want one bold", fired)
	}
	assertRuns(t, sess, root, engine.Runs{
		{Text: "say "},
		{Text: "hi", Marks: richtext.Marks{{Type: engine.MarkBold}}},
	})
	pos, _ := sess.Selection().Head()
	if pos.Offset != 6 {
		t.Errorf("caret = %d, want 6 (end of label)", pos.Offset)
	}
}

func TestInlineItalicStar(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "*it*")

	if len(fired) != 1 || fired[0].Mark != engine.MarkItalic {
		t.Fatalf("fired = %+v, want one italic", fired)
	}
	assertRuns(t, sess, root, engine.Runs{
		{Text: "it", Marks: richtext.Marks{{Type: engine.MarkItalic}}},
	})
}

func TestItalicDoesNotEatUnfinishedBold(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "**hi**")

	if len(fired) != 1 || fired[0].Mark != engine.MarkBold {
		t.Fatalf("fired = %+v, want bold only", fired)
	}
	assertRuns(t, sess, root, engine.Runs{
		{Text: "hi", Marks: richtext.Marks{{Type: engine.MarkBold}}},
	})
}

func TestInlineItalicUnderscore(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "_it_")

	if len(fired) != 1 || fired[0].Mark != engine.MarkItalic {
		t.Fatalf("fired = %+v, want one italic", fired)
	}
	if got := sess.PlainText(root); got != "it" {
		t.Errorf("text = %q, want it", got)
	}
}

func TestInlineCode(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "run `go vet`")

	if len(fired) != 1 || fired[0].Mark != engine.MarkCode {
		t.Fatalf("fired = %+v, want one code", fired)
	}
	assertRuns(t, sess, root, engine.Runs{
		{Text: "run "},
		{Text: "go vet", Marks: richtext.Marks{{Type: engine.MarkCode}}},
	})
}

func TestInlineStrikethrough(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "~~gone~~")

	if len(fired) != 1 || fired[0].Mark != engine.MarkStrikethrough {
		t.Fatalf("fired = %+v, want one strikethrough", fired)
	}
	if got := sess.PlainText(root); got != "gone" {
		t.Errorf("text = %q, want gone", got)
	}
}

func TestInlineLink(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "[go](https://go.dev)")

	if len(fired) != 1 || fired[0].Mark != engine.MarkLink {
		t.Fatalf("fired = %+v, want one link", fired)
	}
	blk, _ := sess.Block(root)
	if got := richtext.PlainText(blk.Runs); got != "go" {
		t.Fatalf("text = %q, want go", got)
	}
	m, ok := blk.Runs[0].Marks.Find(engine.MarkLink)
	if !ok || m.Href != "https://go.dev" {
		t.Errorf("link mark = %+v, want href https://go.dev", m)
	}
}

func TestInlineFiresOnlyAtCaretSpan(t *testing.T) {
	sess, root := seedSession(t)
	if err := sess.UpdateBlockRuns(root, richtext.Plain("**a** **b**")); err != nil {
		t.Fatalf("seed text: %v", err)
	}
	sess.SetCaret(root, 11)

	res, err := New().Apply(sess, root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !res.Fired || res.Mark != engine.MarkBold {
		t.Fatalf("result = %+v, want bold fire", res)
	}
	// Only the span ending at the caret converts; the first stays literal.
	assertRuns(t, sess, root, engine.Runs{
		{Text: "**a** "},
		{Text: "b", Marks: richtext.Marks{{Type: engine.MarkBold}}},
	})
}

func TestInlineIgnoresSpanBehindCaret(t *testing.T) {
	sess, root := seedSession(t)
	if err := sess.UpdateBlockRuns(root, richtext.Plain("**a**x")); err != nil {
		t.Fatalf("seed text: %v", err)
	}
	sess.SetCaret(root, 6)

	res, err := New().Apply(sess, root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Fired {
		t.Fatalf("result = %+v, want no fire", res)
	}
}

func TestInlineUnicodeOffsets(t *testing.T) {
	sess, root := seedSession(t)
	fired := typeAndScan(t, New(), sess, root, "café **naïve**")

	if len(fired) != 1 || fired[0].Mark != engine.MarkBold {
		t.Fatalf("fired = %+v, want one bold", fired)
	}
	assertRuns(t, sess, root, engine.Runs{
		{Text: "café "},
		{Text: "naïve", Marks: richtext.Marks{{Type: engine.MarkBold}}},
	})
	pos, _ := sess.Selection().Head()
	if pos.Offset != 10 {
		t.Errorf("caret = %d, want 10", pos.Offset)
	}
}

func TestUnknownBlockIsNoop(t *testing.T) {
	sess, _ := seedSession(t)

	res, err := New().Apply(sess, "not-a-block")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fired {
		t.Fatalf("result = %+v, want no fire", res)
	}
}

func TestReadOnlySessionError(t *testing.T) {
	d := document.New(document.KindParagraph)
	d, err := d.UpdateRuns(d.Roots()[0], richtext.Plain("# "))
	if err != nil {
		t.Fatalf("seed doc: %v", err)
	}
	sess, root := seedSession(t, engine.WithDocument(d), engine.WithReadOnly())
	sess.SetCaret(root, 2)

	_, err = New().Apply(sess, root)
	if !errors.Is(err, engine.ErrReadOnly) {
		t.Fatalf("err = %v, want ErrReadOnly", err)
	}
}

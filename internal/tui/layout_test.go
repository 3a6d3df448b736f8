package tui

import (
	"strings"
	"testing"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
	"github.com/dshills/inkwell/internal/engine/selection"
)

func mustInsert(t *testing.T, d document.Document, parent document.BlockID, index int, b document.Block) (document.Document, document.BlockID) {
	t.Helper()
	nd, id, err := d.Insert(parent, index, b)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return nd, id
}

// layoutFixture builds one block of every visual flavor:
//
//	# Title
//	• alpha / • beta        (bulleted list)
//	1. one / 2. two         (numbered list)
//	▸ Spoiler               (collapsed, hides "hidden")
//	> wise
//	────
//	▨ a pic
//	plain
func layoutFixture(t *testing.T) (document.Document, map[string]document.BlockID) {
	t.Helper()
	ids := map[string]document.BlockID{}

	d := document.NewWithBlock(document.NewTextBlock(document.KindHeading1, "Title"))
	ids["title"] = d.Roots()[0]

	d, bullets := mustInsert(t, d, "", 1, document.NewBlock(document.KindBulletList))
	d, ids["alpha"] = mustInsert(t, d, bullets, 0, document.NewTextBlock(document.KindListItem, "alpha"))
	d, ids["beta"] = mustInsert(t, d, bullets, 1, document.NewTextBlock(document.KindListItem, "beta"))

	d, numbers := mustInsert(t, d, "", 2, document.NewBlock(document.KindNumberedList))
	d, ids["one"] = mustInsert(t, d, numbers, 0, document.NewTextBlock(document.KindListItem, "one"))
	d, ids["two"] = mustInsert(t, d, numbers, 1, document.NewTextBlock(document.KindListItem, "two"))

	d, toggle := mustInsert(t, d, "", 3, document.NewTextBlock(document.KindToggle, "Spoiler"))
	ids["toggle"] = toggle
	d, ids["hidden"] = mustInsert(t, d, toggle, 0, document.NewTextBlock(document.KindParagraph, "hidden"))
	var err error
	if d, err = d.SetCollapsed(toggle, true); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	d, ids["quote"] = mustInsert(t, d, "", 4, document.NewTextBlock(document.KindQuote, "wise"))
	d, ids["divider"] = mustInsert(t, d, "", 5, document.NewBlock(document.KindDivider))

	img := document.NewBlock(document.KindImage)
	img.Source = "pic.png"
	img.Caption = richtext.Plain("a pic")
	d, ids["image"] = mustInsert(t, d, "", 6, img)

	d, ids["plain"] = mustInsert(t, d, "", 7, document.NewTextBlock(document.KindParagraph, "plain"))

	if err := d.Validate(); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return d, ids
}

func TestLayoutOrderAndPrefixes(t *testing.T) {
	d, ids := layoutFixture(t)
	lines := Layout(d, selection.None(), 0)

	want := []struct {
		block  string
		prefix string
		text   string
	}{
		{"title", "# ", "# Title"},
		{"alpha", "• ", "• alpha"},
		{"beta", "• ", "• beta"},
		{"one", "1. ", "1. one"},
		{"two", "2. ", "2. two"},
		{"toggle", "▸ ", "▸ Spoiler"},
		{"quote", "> ", "> wise"},
		{"divider", "", "───"},
		{"image", "▨ ", "▨ a pic"},
		{"plain", "", "plain"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i].Block != ids[w.block] {
			t.Errorf("line %d block = %s, want %s", i, lines[i].Block, w.block)
		}
		if lines[i].Prefix != w.prefix {
			t.Errorf("line %d prefix = %q, want %q", i, lines[i].Prefix, w.prefix)
		}
		if got := lines[i].Text(); got != w.text {
			t.Errorf("line %d text = %q, want %q", i, got, w.text)
		}
	}
}

func TestLayoutExpandedToggleShowsChildren(t *testing.T) {
	d, ids := layoutFixture(t)
	d, err := d.SetCollapsed(ids["toggle"], false)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}

	lines := Layout(d, selection.None(), 0)
	i := indexOfBlock(lines, ids["toggle"])
	if i < 0 {
		t.Fatal("toggle line missing")
	}
	if lines[i].Prefix != "▾ " {
		t.Errorf("expanded toggle prefix = %q", lines[i].Prefix)
	}
	if lines[i+1].Block != ids["hidden"] {
		t.Fatalf("line after toggle = %s, want hidden child", lines[i+1].Block)
	}
	if lines[i+1].Depth != 1 {
		t.Errorf("child depth = %d, want 1", lines[i+1].Depth)
	}
}

func TestLayoutNestedListDepth(t *testing.T) {
	d := document.New(document.KindBulletList)
	outer := d.Roots()[0]
	d, item := mustInsert(t, d, outer, 0, document.NewTextBlock(document.KindListItem, "outer"))
	d, inner := mustInsert(t, d, item, 0, document.NewBlock(document.KindBulletList))
	d, leaf := mustInsert(t, d, inner, 0, document.NewTextBlock(document.KindListItem, "inner"))

	lines := Layout(d, selection.None(), 0)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Block != item || lines[0].Depth != 0 {
		t.Errorf("outer item at depth %d, want 0", lines[0].Depth)
	}
	if lines[1].Block != leaf || lines[1].Depth != 1 {
		t.Errorf("inner item at depth %d, want 1", lines[1].Depth)
	}
}

func TestLayoutCaretColumn(t *testing.T) {
	d, ids := layoutFixture(t)
	sel := selection.CaretAt(ids["beta"], 2)

	lines := Layout(d, sel, 0)
	i := FindCaretLine(lines)
	if i < 0 || lines[i].Block != ids["beta"] {
		t.Fatalf("caret line = %d", i)
	}
	// "• " is two cells, then two runes of "beta".
	if lines[i].Caret != 4 {
		t.Errorf("caret column = %d, want 4", lines[i].Caret)
	}
	for j, ln := range lines {
		if j != i && ln.Caret != -1 {
			t.Errorf("line %d has stray caret %d", j, ln.Caret)
		}
	}
}

func TestLayoutRangeSelection(t *testing.T) {
	d, ids := layoutFixture(t)
	sel := selection.Range(
		selection.Position{Block: ids["quote"], Offset: 3},
		selection.Position{Block: ids["quote"], Offset: 1},
	)

	lines := Layout(d, sel, 0)
	i := FindCaretLine(lines)
	if i < 0 || lines[i].Block != ids["quote"] {
		t.Fatalf("selection line = %d", i)
	}
	ln := lines[i]
	// "> " is two cells; offsets 1..3 regardless of range direction.
	if ln.SelStart != 3 || ln.SelEnd != 5 {
		t.Errorf("selection span = [%d,%d), want [3,5)", ln.SelStart, ln.SelEnd)
	}
	if ln.Caret != 3 {
		t.Errorf("caret = %d, want 3 (the moving end)", ln.Caret)
	}
}

func TestLayoutBlockSelection(t *testing.T) {
	d, ids := layoutFixture(t)
	sel := selection.Blocks(ids["beta"])

	lines := Layout(d, sel, 0)
	for _, ln := range lines {
		want := ln.Block == ids["beta"]
		if ln.Selected != want {
			t.Errorf("block %s selected = %v, want %v", ln.Block, ln.Selected, want)
		}
	}
}

func TestLayoutClipsToWidth(t *testing.T) {
	d := document.NewWithBlock(document.NewTextBlock(document.KindParagraph, "abcdefghij"))
	id := d.Roots()[0]
	sel := selection.CaretAt(id, 10)

	lines := Layout(d, sel, 6)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	if got := lines[0].Text(); got != "abcdef" {
		t.Errorf("clipped text = %q, want abcdef", got)
	}
	if lines[0].Caret != 5 {
		t.Errorf("caret = %d, want parked at 5", lines[0].Caret)
	}
}

func TestLayoutWideRunes(t *testing.T) {
	d := document.NewWithBlock(document.NewTextBlock(document.KindParagraph, "日本"))
	id := d.Roots()[0]

	lines := Layout(d, selection.CaretAt(id, 1), 0)
	// One ideograph occupies two cells.
	if lines[0].Caret != 2 {
		t.Errorf("caret = %d, want 2", lines[0].Caret)
	}
}

func TestLayoutImageWithoutCaption(t *testing.T) {
	d := document.New(document.KindParagraph)
	img := document.NewBlock(document.KindImage)
	img.Source = "pic.png"
	d, id := mustInsert(t, d, "", 1, img)

	lines := Layout(d, selection.None(), 0)
	i := indexOfBlock(lines, id)
	if i < 0 {
		t.Fatal("image line missing")
	}
	if got := lines[i].Text(); got != "▨ pic.png" {
		t.Errorf("image line = %q", got)
	}
}

func TestLayoutDividerFillsWidth(t *testing.T) {
	d := document.New(document.KindParagraph)
	d, _ = mustInsert(t, d, "", 1, document.NewBlock(document.KindDivider))

	lines := Layout(d, selection.None(), 12)
	if got := lines[1].Text(); got != strings.Repeat("─", 12) {
		t.Errorf("divider = %q, want 12 cells", got)
	}
}

func TestFindCaretLineNone(t *testing.T) {
	d, _ := layoutFixture(t)
	lines := Layout(d, selection.None(), 0)
	if i := FindCaretLine(lines); i != -1 {
		t.Errorf("caret line = %d, want -1", i)
	}
}

func indexOfBlock(lines []Line, id engine.BlockID) int {
	for i, ln := range lines {
		if ln.Block == id {
			return i
		}
	}
	return -1
}

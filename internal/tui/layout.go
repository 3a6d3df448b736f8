package tui

import (
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// indentCells is the indent per nesting level, in cells.
const indentCells = 2

// Span is a stretch of one line's text sharing a mark set.
type Span struct {
	Text  string
	Marks engine.Marks
}

// Line is one visual row of the document projection.
type Line struct {
	Block  engine.BlockID
	Kind   engine.Kind
	Depth  int
	Prefix string
	Spans  []Span

	// Caret is the cell column of the caret when it sits on this line, -1
	// otherwise.
	Caret int

	// SelStart and SelEnd bound a selected cell span on this line; both
	// are -1 when there is none.
	SelStart int
	SelEnd   int

	// Selected marks a whole-block selection.
	Selected bool
}

// Indent returns the line's left margin in cells.
func (l Line) Indent() int { return l.Depth * indentCells }

// Text returns the line's unstyled text, prefix included.
func (l Line) Text() string {
	var sb strings.Builder
	sb.WriteString(l.Prefix)
	for _, sp := range l.Spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// Layout projects a document and selection into visual lines. It is a pure
// function: one line per visible block in preorder, list and column
// containers contribute indentation but no line of their own, and collapsed
// toggles hide their subtrees. Lines are clipped to width cells; width <= 0
// disables clipping.
func Layout(doc engine.Document, sel engine.Selection, width int) []Line {
	lines := make([]Line, 0, doc.Len())
	for _, root := range doc.Roots() {
		layoutBlock(doc, sel, width, root, 0, "", &lines)
	}
	return lines
}

// FindCaretLine returns the index of the line carrying the caret, or the
// first selected line, or -1.
func FindCaretLine(lines []Line) int {
	for i, ln := range lines {
		if ln.Caret >= 0 || ln.Selected {
			return i
		}
	}
	return -1
}

func layoutBlock(doc engine.Document, sel engine.Selection, width int, id engine.BlockID, depth int, marker string, out *[]Line) {
	b, ok := doc.Get(id)
	if !ok {
		return
	}

	if isContainer(b.Kind) {
		for i, c := range b.Children {
			layoutBlock(doc, sel, width, c, childDepth(b.Kind, depth), itemMarker(b.Kind, i), out)
		}
		return
	}

	*out = append(*out, lineFor(sel, width, b, depth, marker))

	if b.Kind == engine.KindToggle && b.Collapsed {
		return
	}
	for _, c := range b.Children {
		layoutBlock(doc, sel, width, c, depth+1, "", out)
	}
}

// isContainer reports kinds that group children without rendering a row.
func isContainer(k engine.Kind) bool {
	return k.ListContainer() || k == engine.KindColumnList || k == engine.KindColumn
}

// childDepth keeps list items at their container's level; columns indent
// their content one step.
func childDepth(container engine.Kind, depth int) int {
	if container == engine.KindColumn {
		return depth + 1
	}
	return depth
}

// itemMarker returns the marker a list container gives its items.
func itemMarker(container engine.Kind, index int) string {
	switch container {
	case engine.KindBulletList:
		return "• "
	case engine.KindNumberedList:
		return strconv.Itoa(index+1) + ". "
	default:
		return ""
	}
}

func lineFor(sel engine.Selection, width int, b engine.Block, depth int, marker string) Line {
	ln := Line{
		Block:    b.ID,
		Kind:     b.Kind,
		Depth:    depth,
		Prefix:   marker,
		Caret:    -1,
		SelStart: -1,
		SelEnd:   -1,
	}
	if ln.Prefix == "" {
		ln.Prefix = kindPrefix(b)
	}

	switch b.Kind {
	case engine.KindDivider:
		fill := width - ln.Indent()
		if width <= 0 || fill < 3 {
			fill = 3
		}
		ln.Spans = []Span{{Text: strings.Repeat("─", fill)}}
	case engine.KindImage:
		if len(b.Caption) > 0 {
			ln.Spans = spansFor(b.Caption)
		} else {
			ln.Spans = []Span{{Text: b.Source}}
		}
	default:
		ln.Spans = spansFor(b.Runs)
	}

	base := ln.Indent() + uniseg.StringWidth(ln.Prefix)
	plain := plainOf(ln.Spans)

	switch sel.Kind {
	case selection.KindCaret:
		if sel.Anchor.Block == b.ID {
			ln.Caret = base + uniseg.StringWidth(runePrefix(plain, sel.Anchor.Offset))
		}
	case selection.KindRange:
		if sel.Anchor.Block == b.ID {
			s, e := sel.Anchor.Offset, sel.Focus.Offset
			if s > e {
				s, e = e, s
			}
			ln.SelStart = base + uniseg.StringWidth(runePrefix(plain, s))
			ln.SelEnd = base + uniseg.StringWidth(runePrefix(plain, e))
			ln.Caret = base + uniseg.StringWidth(runePrefix(plain, sel.Focus.Offset))
		}
	case selection.KindBlocks:
		ln.Selected = sel.In(b.ID)
	}

	if width > 0 {
		clipLine(&ln, width)
	}
	return ln
}

func kindPrefix(b engine.Block) string {
	switch b.Kind {
	case engine.KindHeading1:
		return "# "
	case engine.KindHeading2:
		return "## "
	case engine.KindHeading3:
		return "### "
	case engine.KindQuote:
		return "> "
	case engine.KindToggle:
		if b.Collapsed {
			return "▸ "
		}
		return "▾ "
	case engine.KindListItem:
		// An item rendered outside a container still gets a bullet.
		return "• "
	case engine.KindImage:
		return "▨ "
	default:
		return ""
	}
}

func spansFor(runs engine.Runs) []Span {
	spans := make([]Span, 0, len(runs))
	for _, r := range runs {
		spans = append(spans, Span{Text: r.Text, Marks: r.Marks.Clone()})
	}
	return spans
}

func plainOf(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// clipLine truncates spans at width cells and parks the caret and selection
// bounds inside the visible area.
func clipLine(ln *Line, width int) {
	budget := width - ln.Indent() - uniseg.StringWidth(ln.Prefix)
	if budget < 0 {
		budget = 0
	}
	ln.Spans = clipSpans(ln.Spans, budget)

	if ln.Caret >= width {
		ln.Caret = width - 1
	}
	if ln.SelEnd >= width {
		ln.SelEnd = width - 1
	}
	if ln.SelStart >= width {
		ln.SelStart = width - 1
	}
}

// clipSpans keeps whole grapheme clusters up to the cell budget.
func clipSpans(spans []Span, budget int) []Span {
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		w := uniseg.StringWidth(sp.Text)
		if w <= budget {
			out = append(out, sp)
			budget -= w
			continue
		}
		if kept := clipText(sp.Text, budget); kept != "" {
			out = append(out, Span{Text: kept, Marks: sp.Marks})
		}
		break
	}
	return out
}

// clipText returns the longest prefix of s that fits the cell budget,
// stepping by grapheme cluster.
func clipText(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	gr := uniseg.NewGraphemes(s)
	end := 0
	used := 0
	for gr.Next() {
		w := gr.Width()
		if used+w > budget {
			break
		}
		used += w
		_, end = gr.Positions()
	}
	return s[:end]
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i]
		}
		seen++
	}
	return s
}

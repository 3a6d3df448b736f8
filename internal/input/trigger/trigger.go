package trigger

import (
	"regexp"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Result reports what a scan did.
type Result struct {
	// Fired is true when a rule matched and its edits were applied.
	Fired bool

	// Rule is the name of the rule that fired.
	Rule string

	// Kind is the transform target for line rules.
	Kind engine.Kind

	// Mark is the mark type applied for inline rules.
	Mark engine.MarkType
}

// lineRule transforms a paragraph whose text starts with a marker.
type lineRule struct {
	name   string
	re     *regexp.Regexp
	target engine.Kind
}

// inlineRule marks a delimited span of text. Its pattern captures the label
// in group 1 and, for links, the target in group 2.
type inlineRule struct {
	name string
	re   *regexp.Regexp
	mark engine.MarkType
	href bool
}

// Detector holds the compiled rule tables. A single Detector is safe for
// concurrent use; rules are immutable after New.
type Detector struct {
	line   []lineRule
	inline []inlineRule
}

// New compiles the default rule set.
func New() *Detector {
	return &Detector{
		line: []lineRule{
			{"heading_1", regexp.MustCompile(`^# `), engine.KindHeading1},
			{"heading_2", regexp.MustCompile(`^## `), engine.KindHeading2},
			{"heading_3", regexp.MustCompile(`^### `), engine.KindHeading3},
			{"bulleted_list", regexp.MustCompile(`^[-*] `), engine.KindBulletList},
			{"numbered_list", regexp.MustCompile(`^1\. `), engine.KindNumberedList},
			{"quote", regexp.MustCompile(`^> `), engine.KindQuote},
			{"divider", regexp.MustCompile(`^---$`), engine.KindDivider},
		},
		inline: []inlineRule{
			{"bold", regexp.MustCompile(`\*\*([^*]+)\*\*`), engine.MarkBold, false},
			{"italic", regexp.MustCompile(`\*([^*]+)\*`), engine.MarkItalic, false},
			{"italic", regexp.MustCompile(`_([^_]+)_`), engine.MarkItalic, false},
			{"code", regexp.MustCompile("`([^`]+)`"), engine.MarkCode, false},
			{"strikethrough", regexp.MustCompile(`~~([^~]+)~~`), engine.MarkStrikethrough, false},
			{"link", regexp.MustCompile(`\[([^\[\]]+)\]\(([^()\s]+)\)`), engine.MarkLink, true},
		},
	}
}

// Apply scans the block's text against the rule tables and fires at most one
// rule. It does nothing unless the caret sits in the given block right after
// the text that completes a rule. Errors come only from the engine edits a
// firing rule performs; a scan that fires nothing returns the zero Result.
func (d *Detector) Apply(sess *engine.Session, id engine.BlockID) (Result, error) {
	blk, ok := sess.Block(id)
	if !ok {
		return Result{}, nil
	}
	sel := sess.Selection()
	if sel.Kind != selection.KindCaret || sel.Anchor.Block != id {
		return Result{}, nil
	}
	caret := sel.Anchor.Offset
	plain := sess.PlainText(id)

	// Line rules convert plain paragraphs only; a block that already has a
	// kind keeps it.
	if blk.Kind == engine.KindParagraph {
		for _, r := range d.line {
			marker := r.re.FindString(plain)
			if marker == "" || caret != utf8.RuneCountInString(marker) {
				continue
			}
			if err := d.fireLine(sess, id, r, marker); err != nil {
				return Result{}, err
			}
			return Result{Fired: true, Rule: r.name, Kind: r.target}, nil
		}
	}

	if !blk.Kind.TextBearing() {
		return Result{}, nil
	}
	for _, r := range d.inline {
		m, ok := matchEndingAt(r.re, plain, caret)
		if !ok {
			continue
		}
		if err := d.fireInline(sess, id, r, plain, m); err != nil {
			return Result{}, err
		}
		return Result{Fired: true, Rule: r.name, Mark: r.mark}, nil
	}
	return Result{}, nil
}

// fireLine strips the marker and transforms the block.
func (d *Detector) fireLine(sess *engine.Session, id engine.BlockID, r lineRule, marker string) error {
	if err := sess.DeleteTextRange(id, 0, utf8.RuneCountInString(marker)); err != nil {
		return err
	}
	return sess.TransformBlock(id, r.target)
}

// fireInline strips the delimiters around the matched span and marks the
// label. Deletions run back to front so earlier offsets stay valid.
func (d *Detector) fireInline(sess *engine.Session, id engine.BlockID, r inlineRule, plain string, m []int) error {
	start := runeOffset(plain, m[0])
	end := runeOffset(plain, m[1])
	labelStart := runeOffset(plain, m[2])
	labelEnd := runeOffset(plain, m[3])

	if err := sess.DeleteTextRange(id, labelEnd, end); err != nil {
		return err
	}
	if err := sess.DeleteTextRange(id, start, labelStart); err != nil {
		return err
	}

	mark := engine.Mark{Type: r.mark}
	if r.href {
		mark.Href = plain[m[4]:m[5]]
	}
	return sess.ApplyMark(id, start, start+(labelEnd-labelStart), mark)
}

// matchEndingAt returns the submatch index vector for the match of re in
// plain that ends exactly at the caret's rune offset, if any. A '*' right
// before the match is rejected so the single-star italic rule cannot eat the
// inside of an unfinished "**bold**".
func matchEndingAt(re *regexp.Regexp, plain string, caret int) ([]int, bool) {
	for _, m := range re.FindAllStringSubmatchIndex(plain, -1) {
		if runeOffset(plain, m[1]) != caret {
			continue
		}
		if m[0] > 0 && plain[m[0]-1] == '*' && plain[m[0]] == '*' {
			continue
		}
		return m, true
	}
	return nil, false
}

// runeOffset converts a byte offset in plain to a rune offset.
func runeOffset(plain string, byteOff int) int {
	return utf8.RuneCountInString(plain[:byteOff])
}

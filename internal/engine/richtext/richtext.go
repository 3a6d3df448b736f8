// Package richtext implements the styled-text model used by text-bearing
// blocks: a normalized sequence of runs, each a maximal span of text carrying
// one set of marks.
//
// All operations are pure. Inputs are never modified; results are always in
// normalized form (no empty runs, no two adjacent runs with equal mark sets).
// Offsets and lengths are rune counts, not bytes. Range arguments are clamped
// to the valid span and inverted ranges are swapped, so no operation fails.
package richtext

import (
	"strings"
	"unicode/utf8"
)

// Run is a maximal span of text sharing one mark set.
type Run struct {
	Text  string
	Marks Marks
}

// Length returns the run's text length in runes.
func (r Run) Length() int {
	return utf8.RuneCountInString(r.Text)
}

func (r Run) clone() Run {
	return Run{Text: r.Text, Marks: r.Marks.Clone()}
}

// Runs is the styled-text content of one block. A nil or empty slice is the
// empty text.
type Runs []Run

// Plain builds a single unmarked run from text. Empty text yields nil.
func Plain(text string) Runs {
	if text == "" {
		return nil
	}
	return Runs{{Text: text}}
}

// Length returns the total text length in runes.
func Length(runs Runs) int {
	n := 0
	for _, r := range runs {
		n += r.Length()
	}
	return n
}

// PlainText returns the concatenated text of all runs.
func PlainText(runs Runs) string {
	if len(runs) == 0 {
		return ""
	}
	if len(runs) == 1 {
		return runs[0].Text
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Clone returns a deep copy of runs.
func Clone(runs Runs) Runs {
	if len(runs) == 0 {
		return nil
	}
	out := make(Runs, len(runs))
	for i, r := range runs {
		out[i] = r.clone()
	}
	return out
}

// Equal reports whether two sequences are structurally identical after
// normalization.
func Equal(a, b Runs) bool {
	a, b = Normalize(a), Normalize(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text || !a[i].Marks.Equal(b[i].Marks) {
			return false
		}
	}
	return true
}

// MarksAt returns the marks in effect immediately before a rune offset. The
// start of the sequence inherits the first run's marks; offsets past the end
// inherit the last run's.
func MarksAt(runs Runs, offset int) Marks {
	if len(runs) == 0 {
		return nil
	}
	if offset <= 0 {
		return runs[0].Marks.Clone()
	}
	pos := 0
	for _, r := range runs {
		n := r.Length()
		if offset <= pos+n {
			return r.Marks.Clone()
		}
		pos += n
	}
	return runs[len(runs)-1].Marks.Clone()
}

// clampOffset bounds a rune offset to [0, n].
func clampOffset(n, off int) int {
	if off < 0 {
		return 0
	}
	if off > n {
		return n
	}
	return off
}

// clampRange bounds a rune range to [0, n], swapping inverted endpoints.
func clampRange(n, start, end int) (int, int) {
	if start > end {
		start, end = end, start
	}
	return clampOffset(n, start), clampOffset(n, end)
}

// runeIndex returns the byte index of the at-th rune of s.
func runeIndex(s string, at int) int {
	if at <= 0 {
		return 0
	}
	count := 0
	for i := range s {
		if count == at {
			return i
		}
		count++
	}
	return len(s)
}

// splitText splits s at a rune offset.
func splitText(s string, at int) (string, string) {
	i := runeIndex(s, at)
	return s[:i], s[i:]
}

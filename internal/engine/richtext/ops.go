package richtext

// Normalize returns the canonical form of runs: empty runs dropped and
// adjacent runs with equal mark sets merged into one. Empty content
// normalizes to nil.
func Normalize(runs Runs) Runs {
	out := make(Runs, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Marks.Equal(r.Marks) {
			out[len(out)-1].Text += r.Text
			continue
		}
		out = append(out, r.clone())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Normalized reports whether runs is already in canonical form.
func Normalized(runs Runs) bool {
	for i, r := range runs {
		if r.Text == "" {
			return false
		}
		if i > 0 && runs[i-1].Marks.Equal(r.Marks) {
			return false
		}
	}
	return true
}

// SplitAt splits the sequence at a rune offset, cutting a run in two when the
// offset falls inside one; both halves keep that run's full mark set. An
// offset of 0 yields (nil, all); Length yields (all, nil).
func SplitAt(runs Runs, offset int) (left, right Runs) {
	offset = clampOffset(Length(runs), offset)
	pos := 0
	for _, r := range runs {
		n := r.Length()
		switch {
		case pos+n <= offset:
			left = append(left, r.clone())
		case pos >= offset:
			right = append(right, r.clone())
		default:
			l, rr := splitText(r.Text, offset-pos)
			left = append(left, Run{Text: l, Marks: r.Marks.Clone()})
			right = append(right, Run{Text: rr, Marks: r.Marks.Clone()})
		}
		pos += n
	}
	return Normalize(left), Normalize(right)
}

// Slice returns the sub-sequence covering the rune range [start, end).
func Slice(runs Runs, start, end int) Runs {
	start, end = clampRange(Length(runs), start, end)
	_, tail := SplitAt(runs, start)
	head, _ := SplitAt(tail, end-start)
	return head
}

// Concat joins two sequences, merging runs at the seam when their mark sets
// match.
func Concat(a, b Runs) Runs {
	joined := make(Runs, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	return Normalize(joined)
}

// Apply sets mark over the rune range [start, end), replacing any existing
// mark of the same type there (a link applied over a link changes the
// target). Applying over an empty range is a no-op.
func Apply(runs Runs, start, end int, mark Mark) Runs {
	start, end = clampRange(Length(runs), start, end)
	if start == end {
		return Normalize(runs)
	}
	return mapRange(runs, start, end, func(m Marks) Marks {
		return m.With(mark)
	})
}

// Remove clears the mark type over the rune range [start, end).
func Remove(runs Runs, start, end int, t MarkType) Runs {
	start, end = clampRange(Length(runs), start, end)
	if start == end {
		return Normalize(runs)
	}
	return mapRange(runs, start, end, func(m Marks) Marks {
		return m.Without(t)
	})
}

// mapRange rewrites the mark sets of the covered sub-spans, splitting runs at
// the range boundaries.
func mapRange(runs Runs, start, end int, fn func(Marks) Marks) Runs {
	out := make(Runs, 0, len(runs)+2)
	pos := 0
	for _, r := range runs {
		n := r.Length()
		lo, hi := max(pos, start), min(pos+n, end)
		if lo >= hi {
			out = append(out, r.clone())
			pos += n
			continue
		}
		head, rest := splitText(r.Text, lo-pos)
		mid, tail := splitText(rest, hi-lo)
		if head != "" {
			out = append(out, Run{Text: head, Marks: r.Marks.Clone()})
		}
		out = append(out, Run{Text: mid, Marks: fn(r.Marks)})
		if tail != "" {
			out = append(out, Run{Text: tail, Marks: r.Marks.Clone()})
		}
		pos += n
	}
	return Normalize(out)
}

// Insert inserts plain text at a rune offset. The inserted text inherits the
// marks in effect immediately before the offset; at offset 0 it inherits the
// first run's marks.
func Insert(runs Runs, offset int, text string) Runs {
	if text == "" {
		return Normalize(runs)
	}
	offset = clampOffset(Length(runs), offset)
	marks := MarksAt(runs, offset)
	left, right := SplitAt(runs, offset)
	out := make(Runs, 0, len(left)+len(right)+1)
	out = append(out, left...)
	out = append(out, Run{Text: text, Marks: marks})
	out = append(out, right...)
	return Normalize(out)
}

// DeleteRange removes the rune range [start, end).
func DeleteRange(runs Runs, start, end int) Runs {
	start, end = clampRange(Length(runs), start, end)
	if start == end {
		return Normalize(runs)
	}
	left, _ := SplitAt(runs, start)
	_, right := SplitAt(runs, end)
	return Concat(left, right)
}

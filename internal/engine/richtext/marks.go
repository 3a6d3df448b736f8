package richtext

import (
	"fmt"
	"sort"
	"strings"
)

// MarkType identifies one inline formatting attribute.
type MarkType uint8

// Mark types supported on text runs.
const (
	MarkBold MarkType = iota + 1
	MarkItalic
	MarkUnderline
	MarkStrikethrough
	MarkCode
	MarkLink
)

var markNames = map[MarkType]string{
	MarkBold:          "bold",
	MarkItalic:        "italic",
	MarkUnderline:     "underline",
	MarkStrikethrough: "strikethrough",
	MarkCode:          "code",
	MarkLink:          "link",
}

// String returns the canonical name of the mark type.
func (t MarkType) String() string {
	if name, ok := markNames[t]; ok {
		return name
	}
	return fmt.Sprintf("marktype(%d)", uint8(t))
}

// Valid reports whether t is a known mark type.
func (t MarkType) Valid() bool {
	_, ok := markNames[t]
	return ok
}

// ParseMarkType resolves a canonical mark name to its type.
func ParseMarkType(name string) (MarkType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range markNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Mark is one inline formatting attribute on a run of text.
// Href is meaningful only when Type is MarkLink.
type Mark struct {
	Type MarkType
	Href string
}

// Link builds a link mark targeting href.
func Link(href string) Mark {
	return Mark{Type: MarkLink, Href: href}
}

// Marks is a set of formatting attributes: sorted by type, at most one mark
// per type. The zero value is the empty set.
type Marks []Mark

// Has reports whether the set contains a mark of the given type.
func (m Marks) Has(t MarkType) bool {
	_, ok := m.Find(t)
	return ok
}

// Find returns the mark of the given type, if present.
func (m Marks) Find(t MarkType) (Mark, bool) {
	for _, e := range m {
		if e.Type == t {
			return e, true
		}
	}
	return Mark{}, false
}

// With returns a new set containing mark, replacing any existing mark of the
// same type. The receiver is not modified.
func (m Marks) With(mark Mark) Marks {
	out := make(Marks, 0, len(m)+1)
	for _, e := range m {
		if e.Type != mark.Type {
			out = append(out, e)
		}
	}
	out = append(out, mark)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Without returns a new set with the given type removed. The receiver is not
// modified.
func (m Marks) Without(t MarkType) Marks {
	if !m.Has(t) {
		return m.Clone()
	}
	out := make(Marks, 0, len(m))
	for _, e := range m {
		if e.Type != t {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Equal reports whether two sets contain the same marks, including link
// targets.
func (m Marks) Equal(o Marks) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (m Marks) Clone() Marks {
	if len(m) == 0 {
		return nil
	}
	out := make(Marks, len(m))
	copy(out, m)
	return out
}

// Names returns the canonical names of the marks in the set, in set order.
func (m Marks) Names() []string {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, len(m))
	for i, e := range m {
		names[i] = e.Type.String()
	}
	return names
}

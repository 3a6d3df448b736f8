package document

import (
	"fmt"
	"strings"
)

// Kind identifies a block's type. Text-bearing kinds carry rich text runs;
// structural kinds carry kind-specific payload fields instead.
type Kind uint8

// Block kinds.
const (
	KindParagraph Kind = iota + 1
	KindHeading1
	KindHeading2
	KindHeading3
	KindQuote
	KindListItem
	KindToggle
	KindBulletList
	KindNumberedList
	KindColumnList
	KindColumn
	KindDivider
	KindImage
)

var kindNames = map[Kind]string{
	KindParagraph:    "paragraph",
	KindHeading1:     "heading_1",
	KindHeading2:     "heading_2",
	KindHeading3:     "heading_3",
	KindQuote:        "quote",
	KindListItem:     "list_item",
	KindToggle:       "toggle",
	KindBulletList:   "bulleted_list",
	KindNumberedList: "numbered_list",
	KindColumnList:   "column_list",
	KindColumn:       "column",
	KindDivider:      "divider",
	KindImage:        "image",
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a canonical kind name.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// TextBearing reports whether blocks of this kind carry rich text runs.
func (k Kind) TextBearing() bool {
	switch k {
	case KindParagraph, KindHeading1, KindHeading2, KindHeading3,
		KindQuote, KindListItem, KindToggle:
		return true
	}
	return false
}

// Container reports whether blocks of this kind hold children in the UI
// sense. Every block carries a child list either way; dividers and images
// are the only kinds nothing nests under.
func (k Kind) Container() bool {
	return k != KindDivider && k != KindImage
}

// ListContainer reports whether the kind is a bulleted or numbered list
// container.
func (k Kind) ListContainer() bool {
	return k == KindBulletList || k == KindNumberedList
}

// splitKind returns the kind the new sibling takes when a block of kind k is
// split: kinds that repeat on Enter keep their kind, everything else
// continues as a paragraph.
func splitKind(k Kind) Kind {
	switch k {
	case KindParagraph, KindQuote, KindListItem, KindToggle:
		return k
	default:
		return KindParagraph
	}
}

// transformTargets is the transform menu: the target kinds Transform accepts
// for each source kind. Columns are excluded; they exist only through layout
// moves, never through the menu.
var textTransformTargets = []Kind{
	KindParagraph, KindHeading1, KindHeading2, KindHeading3,
	KindQuote, KindListItem, KindToggle,
	KindBulletList, KindNumberedList, KindDivider,
}

// AvailableTransforms returns the target kinds Transform accepts for blocks
// of the given kind.
func AvailableTransforms(k Kind) []Kind {
	switch {
	case k.TextBearing():
		out := make([]Kind, 0, len(textTransformTargets)-1)
		for _, t := range textTransformTargets {
			if t != k {
				out = append(out, t)
			}
		}
		return out
	case k == KindBulletList:
		return []Kind{KindNumberedList}
	case k == KindNumberedList:
		return []Kind{KindBulletList}
	case k == KindDivider, k == KindImage:
		return []Kind{KindParagraph}
	default:
		return nil
	}
}

// canTransform reports whether kind from may become kind to.
func canTransform(from, to Kind) bool {
	for _, t := range AvailableTransforms(from) {
		if t == to {
			return true
		}
	}
	return false
}

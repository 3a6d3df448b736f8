package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
)

// Theme maps document structure and marks to terminal styles.
type Theme struct {
	// Base is the style of ordinary text.
	Base tcell.Style

	// Selection paints selected text and selected blocks.
	Selection tcell.Style

	// Status paints the status bar.
	Status tcell.Style

	accent tcell.Color
	code   tcell.Color
	link   tcell.Color
}

// NewTheme builds a theme from the UI configuration. Colors arrive as hex
// strings; anything unparsable falls back to the terminal default.
func NewTheme(cfg config.UI) Theme {
	base := tcell.StyleDefault
	if cfg.Theme == "light" {
		base = base.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	}
	return Theme{
		Base:      base,
		Selection: base.Reverse(true),
		Status:    base.Reverse(true).Bold(true),
		accent:    hexColor(cfg.AccentColor, tcell.ColorDefault),
		code:      hexColor(cfg.CodeColor, tcell.ColorDefault),
		link:      hexColor(cfg.LinkColor, tcell.ColorDefault),
	}
}

// SpanStyle returns the style for text of the given block kind carrying the
// given marks.
func (t Theme) SpanStyle(kind engine.Kind, marks engine.Marks) tcell.Style {
	st := t.blockStyle(kind)
	if marks.Has(engine.MarkBold) {
		st = st.Bold(true)
	}
	if marks.Has(engine.MarkItalic) {
		st = st.Italic(true)
	}
	if marks.Has(engine.MarkUnderline) {
		st = st.Underline(true)
	}
	if marks.Has(engine.MarkStrikethrough) {
		st = st.StrikeThrough(true)
	}
	if marks.Has(engine.MarkCode) {
		st = st.Foreground(t.code)
	}
	if marks.Has(engine.MarkLink) {
		st = st.Foreground(t.link).Underline(true)
	}
	return st
}

// PrefixStyle returns the style for a line's kind marker.
func (t Theme) PrefixStyle(kind engine.Kind) tcell.Style {
	switch kind {
	case engine.KindHeading1, engine.KindHeading2, engine.KindHeading3,
		engine.KindToggle:
		return t.Base.Foreground(t.accent).Bold(true)
	case engine.KindListItem, engine.KindQuote, engine.KindImage:
		return t.Base.Foreground(t.accent)
	default:
		return t.Base.Dim(true)
	}
}

func (t Theme) blockStyle(kind engine.Kind) tcell.Style {
	switch kind {
	case engine.KindHeading1, engine.KindHeading2, engine.KindHeading3:
		return t.Base.Bold(true)
	case engine.KindQuote:
		return t.Base.Italic(true)
	case engine.KindDivider:
		return t.Base.Dim(true)
	case engine.KindImage:
		return t.Base.Dim(true).Italic(true)
	default:
		return t.Base
	}
}

// hexColor parses a #rrggbb string into a terminal color.
func hexColor(s string, fallback tcell.Color) tcell.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

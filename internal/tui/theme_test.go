package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/richtext"
)

func testUI() config.UI {
	return config.UI{
		Theme:       "dark",
		AccentColor: "#ff0000",
		CodeColor:   "#00ff00",
		LinkColor:   "#0000ff",
	}
}

func TestSpanStyleAttributes(t *testing.T) {
	th := NewTheme(testUI())

	tests := []struct {
		mark engine.MarkType
		attr tcell.AttrMask
	}{
		{engine.MarkBold, tcell.AttrBold},
		{engine.MarkItalic, tcell.AttrItalic},
		{engine.MarkUnderline, tcell.AttrUnderline},
		{engine.MarkStrikethrough, tcell.AttrStrikeThrough},
	}
	for _, tt := range tests {
		st := th.SpanStyle(engine.KindParagraph, richtext.Marks{{Type: tt.mark}})
		_, _, attrs := st.Decompose()
		if attrs&tt.attr == 0 {
			t.Errorf("mark %v missing attr %v", tt.mark, tt.attr)
		}
	}
}

func TestSpanStyleColors(t *testing.T) {
	th := NewTheme(testUI())

	st := th.SpanStyle(engine.KindParagraph, richtext.Marks{{Type: engine.MarkCode}})
	fg, _, _ := st.Decompose()
	if fg != tcell.NewRGBColor(0, 255, 0) {
		t.Errorf("code fg = %v, want #00ff00", fg)
	}

	st = th.SpanStyle(engine.KindParagraph, richtext.Marks{{Type: engine.MarkLink, Href: "x"}})
	fg, _, attrs := st.Decompose()
	if fg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("link fg = %v, want #0000ff", fg)
	}
	if attrs&tcell.AttrUnderline == 0 {
		t.Error("link missing underline")
	}
}

func TestHeadingTextIsBold(t *testing.T) {
	th := NewTheme(testUI())
	for _, k := range []engine.Kind{engine.KindHeading1, engine.KindHeading2, engine.KindHeading3} {
		_, _, attrs := th.SpanStyle(k, nil).Decompose()
		if attrs&tcell.AttrBold == 0 {
			t.Errorf("heading %v not bold", k)
		}
	}
}

func TestPrefixStyleUsesAccent(t *testing.T) {
	th := NewTheme(testUI())
	fg, _, _ := th.PrefixStyle(engine.KindHeading1).Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("heading prefix fg = %v, want accent", fg)
	}
}

func TestInvalidColorFallsBack(t *testing.T) {
	ui := testUI()
	ui.CodeColor = "chartreuse"
	th := NewTheme(ui)

	st := th.SpanStyle(engine.KindParagraph, richtext.Marks{{Type: engine.MarkCode}})
	fg, _, _ := st.Decompose()
	if fg != tcell.ColorDefault {
		t.Errorf("unparsable color fg = %v, want terminal default", fg)
	}
}

func TestLightThemeBase(t *testing.T) {
	ui := testUI()
	ui.Theme = "light"
	th := NewTheme(ui)

	fg, bg, _ := th.Base.Decompose()
	if fg != tcell.ColorBlack || bg != tcell.ColorWhite {
		t.Errorf("light base = %v on %v", fg, bg)
	}
}

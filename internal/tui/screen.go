package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Screen owns the tcell lifecycle and draws line lists. All methods are safe
// for concurrent use.
type Screen struct {
	mu sync.Mutex
	ts tcell.Screen
}

// NewScreen allocates a terminal screen without initializing it.
func NewScreen() (*Screen, error) {
	ts, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Screen{ts: ts}, nil
}

// Init takes over the terminal.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ts.Init(); err != nil {
		return err
	}
	s.ts.EnablePaste()
	return nil
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ts.Fini()
}

// Size returns the terminal dimensions.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ts.Size()
}

// Sync forces a full repaint, typically after a resize.
func (s *Screen) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ts.Sync()
}

// PollEvent blocks for the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.ts.PollEvent()
}

// Interrupt wakes a goroutine blocked in PollEvent so it repaints.
func (s *Screen) Interrupt() {
	_ = s.ts.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
}

// Beep rings the terminal bell.
func (s *Screen) Beep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.ts.Beep() // best-effort; terminal may not support it
}

// Draw renders the window of lines starting at top, plus an optional status
// bar on the bottom row, and shows the caret when it is in view.
func (s *Screen) Draw(theme Theme, lines []Line, top int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := s.ts.Size()
	s.ts.Clear()

	rows := height
	if status != "" {
		rows--
	}

	cursorShown := false
	for row := 0; row < rows; row++ {
		i := top + row
		if i >= len(lines) {
			break
		}
		s.drawLine(theme, lines[i], row, width)
		if lines[i].Caret >= 0 && lines[i].Caret < width {
			s.ts.ShowCursor(lines[i].Caret, row)
			cursorShown = true
		}
	}
	if !cursorShown {
		s.ts.HideCursor()
	}

	if status != "" {
		s.drawStatus(theme, status, height-1, width)
	}
	s.ts.Show()
}

func (s *Screen) drawLine(theme Theme, ln Line, row, width int) {
	x := ln.Indent()
	x = s.drawText(ln.Prefix, x, row, width, theme.PrefixStyle(ln.Kind), ln, theme)
	for _, sp := range ln.Spans {
		x = s.drawText(sp.Text, x, row, width, theme.SpanStyle(ln.Kind, sp.Marks), ln, theme)
	}
}

// drawText writes text cell by cell from column x, substituting the
// selection style inside the line's selected span, and returns the next free
// column.
func (s *Screen) drawText(text string, x, row, width int, style tcell.Style, ln Line, theme Theme) int {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		if x >= width {
			break
		}
		st := style
		if ln.Selected || (ln.SelStart <= x && x < ln.SelEnd) {
			st = theme.Selection
		}
		runes := gr.Runes()
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		s.ts.SetContent(x, row, runes[0], comb, st)
		x += gr.Width()
	}
	return x
}

func (s *Screen) drawStatus(theme Theme, status string, row, width int) {
	x := 0
	gr := uniseg.NewGraphemes(status)
	for gr.Next() {
		if x >= width {
			break
		}
		runes := gr.Runes()
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		s.ts.SetContent(x, row, runes[0], comb, theme.Status)
		x += gr.Width()
	}
	for ; x < width; x++ {
		s.ts.SetContent(x, row, ' ', nil, theme.Status)
	}
}

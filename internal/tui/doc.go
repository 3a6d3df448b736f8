// Package tui is the terminal binding for the editing engine: it projects a
// document into styled lines, draws them with tcell, and translates key
// events into engine operations.
//
// The package holds no document logic. Layout is a pure function from
// (document, selection, width) to a line list, so everything above the
// terminal itself is unit-testable without one. The Editor owns the key
// bindings and the scroll position; the Screen owns the tcell lifecycle.
//
// Column arithmetic is in terminal cells, not runes: text is stepped by
// grapheme cluster so combining sequences and wide characters keep the caret
// where the user sees it.
package tui

// Package engine provides the core document editing engine for Inkwell.
//
// The engine package serves as the main facade, combining the block tree,
// rich text runs, selection handling, and undo/redo history into a unified,
// thread-safe API suitable for building structured document editors.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - document: immutable block tree with structural operations
//   - richtext: mark algebra over normalized text runs
//   - selection: caret, range and block-set selection with repair
//   - history: snapshot timeline with quiet-interval text batching
//
// The sub-packages are pure: their operations take a value and return a new
// value. The Session owns the live values, serializes mutation, records
// every committed state in history, and announces changes on an event bus.
//
// # Thread Safety
//
// All Session operations are safe for concurrent use. A single mutex
// serializes them; events are published after the mutex is released, so an
// event handler may call back into the session without deadlocking.
//
// # Basic Usage
//
// Create a session and edit:
//
//	s := engine.New()
//	root := s.Document().Roots()[0]
//
//	// Type into the first paragraph
//	s.InsertText(root, 0, "Hello, World!")
//
//	// Add a heading after it
//	h, _ := s.InsertBlockAfter(root, engine.KindHeading1)
//	s.InsertText(h, 0, "A Title")
//
//	// Bold the greeting
//	s.ApplyMark(root, 0, 5, engine.Mark{Type: engine.MarkBold})
//
// # Undo and Redo
//
// Structural operations record one history entry each. Consecutive text
// edits to the same block coalesce into a single entry while the typist
// keeps going; the open batch commits after a quiet interval, or
// immediately when a structural edit, an undo, or FlushBatch intervenes.
//
//	s.InsertText(root, 0, "h")
//	s.InsertText(root, 1, "i")
//	s.Undo() // removes "hi" as one unit
//	s.Redo() // restores it
//
// # Selection
//
// The session keeps one selection: a caret, a text range inside a block, or
// a set of whole blocks. Mutations adjust it; undo restores the selection
// captured with the snapshot. Selection moves themselves are not recorded
// in history.
//
//	s.SetCaret(root, 5)
//	sel := s.Selection()
//
// # Events
//
// With a bus attached, the session publishes document.changed,
// selection.changed, history.changed, history.batch.flushed and
// editor.focus.requested events:
//
//	bus := event.NewBus()
//	s := engine.New(engine.WithBus(bus))
//	bus.Subscribe(event.TopicDocumentChanged, func(e event.Event) {
//	    // react to edits
//	})
//
// # Configuration
//
// Configure the session at creation time:
//
//	s := engine.New(
//	    engine.WithDocument(loaded),
//	    engine.WithMaxEntries(200),
//	    engine.WithQuietInterval(300*time.Millisecond),
//	    engine.WithMaxDepth(16),
//	)
//
// # Read-Only Mode
//
// A read-only session rejects every mutation:
//
//	s := engine.New(engine.WithReadOnly())
//	err := s.InsertText(id, 0, "x")
//	// err == engine.ErrReadOnly
//
// # Error Handling
//
// Mutations wrap sentinel errors from the document package with the failing
// operation, so callers test them with errors.Is:
//
//   - document.ErrNotFound: the block id does not exist
//   - document.ErrRejected: the operation is not allowed there
//   - document.ErrCycle: the move would create a cycle
//   - document.ErrDepthExceeded: nesting past the configured maximum
//   - document.ErrNotTextBearing: text operation on a structural block
//   - engine.ErrReadOnly: write operation on a read-only session
package engine

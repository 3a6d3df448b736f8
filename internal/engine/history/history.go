package history

import (
	"sync"
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Defaults for history configuration.
const (
	// DefaultMaxEntries bounds the timeline length.
	DefaultMaxEntries = 100

	// DefaultQuietInterval is how long a text batch stays open after its
	// last edit before it commits on its own.
	DefaultQuietInterval = 500 * time.Millisecond
)

// Option configures a History.
type Option func(*History)

// WithMaxEntries bounds the timeline. Values below 2 are ignored: the
// timeline always keeps at least the initial state and the current one.
func WithMaxEntries(n int) Option {
	return func(h *History) {
		if n >= 2 {
			h.maxEntries = n
		}
	}
}

// WithQuietInterval sets the batching deadline for text edits.
func WithQuietInterval(d time.Duration) Option {
	return func(h *History) {
		if d > 0 {
			h.quiet = d
		}
	}
}

// WithClock substitutes the time source. Tests pass a ManualClock.
func WithClock(c Clock) Option {
	return func(h *History) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithFlushNotify registers a callback invoked after a batch commits on its
// quiet-interval deadline. Flushes forced by other calls (a structural
// commit, undo, an explicit Flush) do not notify; their callers already know.
func WithFlushNotify(fn func(Entry)) Option {
	return func(h *History) { h.onFlush = fn }
}

// batchKey identifies an open batch: consecutive edits coalesce only when
// both the block and the operation kind match.
type batchKey struct {
	Block document.BlockID
	Op    OpKind
}

// batch holds the open text batch: the newest pending snapshot plus the
// timer that commits it after the quiet interval.
type batch struct {
	key     batchKey
	pending Entry
	timer   Timer
	gen     uint64
}

// History is a bounded undo/redo timeline of document snapshots.
//
// The timeline always holds at least one entry (the initial state) and a
// pointer indexes the entry equal to the caller's live state. Structural
// operations commit a new entry immediately. Text and format edits open a
// batch instead: the pending snapshot is replaced on every further edit of
// the same block and kind, and commits as a single entry when the quiet
// interval elapses, when a different block or kind is edited, or when
// history itself is consulted.
//
// All methods are safe for concurrent use. The deadline callback takes the
// same lock as the public methods; a generation counter discards callbacks
// from timers that were superseded after firing.
type History struct {
	mu      sync.Mutex
	entries []Entry
	ptr     int

	open *batch
	gen  uint64

	maxEntries int
	quiet      time.Duration
	clock      Clock
	onFlush    func(Entry)
}

// New seeds a timeline with the initial document and selection.
func New(doc document.Document, sel selection.Selection, opts ...Option) *History {
	h := &History{
		maxEntries: DefaultMaxEntries,
		quiet:      DefaultQuietInterval,
		clock:      SystemClock{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.entries = []Entry{{
		Doc: doc.Clone(),
		Sel: sel.Clone(),
		Op:  OpInitial,
		At:  h.clock.Now(),
	}}
	return h
}

// CommitStructural records a completed structural operation as its own
// entry, committing any open batch first.
func (h *History) CommitStructural(doc document.Document, sel selection.Selection, op OpKind, block document.BlockID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
	h.appendLocked(Entry{
		Doc:   doc.Clone(),
		Sel:   sel.Clone(),
		Op:    op,
		Block: block,
		At:    h.clock.Now(),
	})
}

// CommitText records a text or format edit. Consecutive edits of the same
// kind on the same block replace the pending snapshot of the open batch; an
// edit with a different key commits the open batch and opens a new one. The
// batch entry keeps the timestamp of its last contributing edit.
func (h *History) CommitText(doc document.Document, sel selection.Selection, op OpKind, block document.BlockID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := batchKey{Block: block, Op: op}
	ent := Entry{
		Doc:   doc.Clone(),
		Sel:   sel.Clone(),
		Op:    op,
		Block: block,
		At:    h.clock.Now(),
	}

	if h.open != nil && h.open.key == key {
		h.open.timer.Stop()
		h.gen++
		h.open.gen = h.gen
		h.open.pending = ent
		h.open.timer = h.scheduleLocked(h.gen)
		return
	}

	h.flushLocked()

	// The live document has already changed, so the redo tail is stale the
	// moment the batch opens, not when it commits.
	h.entries = h.entries[:h.ptr+1]

	h.gen++
	h.open = &batch{key: key, pending: ent, gen: h.gen}
	h.open.timer = h.scheduleLocked(h.gen)
}

func (h *History) scheduleLocked(gen uint64) Timer {
	return h.clock.AfterFunc(h.quiet, func() { h.deadline(gen) })
}

// deadline commits the open batch once its quiet interval elapses. The
// generation guard drops callbacks from timers superseded after firing.
func (h *History) deadline(gen uint64) {
	h.mu.Lock()
	if h.open == nil || h.open.gen != gen {
		h.mu.Unlock()
		return
	}
	ent, _ := h.flushLocked()
	fn := h.onFlush
	h.mu.Unlock()

	if fn != nil {
		fn(ent)
	}
}

// flushLocked commits the open batch, if any, and reports the entry it
// committed.
func (h *History) flushLocked() (Entry, bool) {
	if h.open == nil {
		return Entry{}, false
	}
	h.open.timer.Stop()
	ent := h.open.pending
	h.open = nil
	h.appendLocked(ent)
	return ent, true
}

// appendLocked records a committed entry: the redo tail is truncated, the
// entry appended, the pointer moved onto it, and the oldest entries evicted
// past the bound.
func (h *History) appendLocked(e Entry) {
	h.entries = append(h.entries[:h.ptr+1], e)
	h.ptr = len(h.entries) - 1
	for len(h.entries) > h.maxEntries {
		h.entries = h.entries[1:]
		h.ptr--
	}
}

// Flush commits the open batch, if any, and reports whether an entry was
// committed.
func (h *History) Flush() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, flushed := h.flushLocked()
	return flushed
}

// Undo steps the pointer back one entry and returns a deep copy of the
// state to restore. Any open batch commits first, so pending keystrokes are
// never lost. ok is false at the earliest entry.
func (h *History) Undo() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
	if h.ptr == 0 {
		return Entry{}, false
	}
	h.ptr--
	return h.entries[h.ptr].snapshot(), true
}

// Redo steps the pointer forward one entry and returns a deep copy of the
// state to restore. Any open batch commits first, which leaves the pointer
// at the newest entry and makes redo a no-op. Otherwise ok is false only at
// the newest entry.
func (h *History) Redo() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
	if h.ptr >= len(h.entries)-1 {
		return Entry{}, false
	}
	h.ptr++
	return h.entries[h.ptr].snapshot(), true
}

// CanUndo reports whether Undo would restore an earlier state. An open
// batch counts: it commits on undo and is then stepped over.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ptr > 0 || h.open != nil
}

// CanRedo reports whether Redo would restore a later state.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ptr < len(h.entries)-1
}

// UndoDepth counts the states Undo can step back through, an open batch
// included.
func (h *History) UndoDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.ptr
	if h.open != nil {
		n++
	}
	return n
}

// RedoDepth counts the states Redo can step forward through.
func (h *History) RedoDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries) - 1 - h.ptr
}

// Len is the number of committed entries in the timeline.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/persist"
)

// Document is one open document: a file path bound to a live session.
type Document struct {
	// Path is the absolute file path, empty for scratch documents.
	Path string

	// Name is the display name, the base of Path or "untitled".
	Name string

	// Session is the document's editing session.
	Session *engine.Session

	dirty atomic.Bool
}

// Dirty reports whether the document has edits that are not on disk.
func (d *Document) Dirty() bool { return d.dirty.Load() }

// IsScratch reports whether the document has no backing file.
func (d *Document) IsScratch() bool { return d.Path == "" }

// SessionFactory builds the session for a newly opened document. seed is the
// loaded tree, or nil for a fresh document.
type SessionFactory func(seed *document.Document) *engine.Session

// Workspace manages the open documents: which exist, which is active, which
// have unsaved edits. Opening goes through persist.Load; a missing file
// starts a fresh document still bound to its path. When a bus is attached
// the workspace marks the active document dirty on every document change;
// only the active document is bound to input, so the event always concerns
// it.
type Workspace struct {
	mu         sync.RWMutex
	docs       map[string]*Document
	order      []string
	active     string
	scratches  int
	newSession SessionFactory
}

// NewWorkspace creates a workspace. The factory must not be nil; the bus may
// be.
func NewWorkspace(bus *event.Bus, newSession SessionFactory) *Workspace {
	w := &Workspace{
		docs:       make(map[string]*Document),
		newSession: newSession,
	}
	if bus != nil {
		_, _ = bus.Subscribe(event.TopicDocumentChanged, func(event.Event) {
			if d := w.Active(); d != nil {
				d.dirty.Store(true)
			}
		})
	}
	return w
}

// Open opens the file at path and makes it active. An already open path just
// becomes active again. A file that does not exist yet opens as a fresh
// document bound to the path; the first save creates it.
func (w *Workspace) Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if d, ok := w.docs[abs]; ok {
		w.active = abs
		return d, nil
	}

	var seed *document.Document
	switch loaded, err := persist.Load(abs); {
	case err == nil:
		seed = &loaded
	case errors.Is(err, fs.ErrNotExist):
		// Fresh document; nothing to seed.
	default:
		return nil, err
	}

	d := &Document{
		Path:    abs,
		Name:    filepath.Base(abs),
		Session: w.newSession(seed),
	}
	w.docs[abs] = d
	w.order = append(w.order, abs)
	w.active = abs
	return d, nil
}

// OpenScratch creates an unnamed document and makes it active.
func (w *Workspace) OpenScratch() *Document {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.scratches++
	name := "untitled"
	if w.scratches > 1 {
		name = fmt.Sprintf("untitled-%d", w.scratches)
	}
	key := "scratch:" + name
	d := &Document{
		Name:    name,
		Session: w.newSession(nil),
	}
	w.docs[key] = d
	w.order = append(w.order, key)
	w.active = key
	return d
}

// Close removes a document from the workspace. Closing the active document
// promotes the most recently opened survivor.
func (w *Workspace) Close(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	key, ok := w.keyFor(path)
	if !ok {
		return fmt.Errorf("close %s: %w", path, ErrDocumentNotFound)
	}
	delete(w.docs, key)
	for i, k := range w.order {
		if k == key {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.active == key {
		w.active = ""
		if len(w.order) > 0 {
			w.active = w.order[len(w.order)-1]
		}
	}
	return nil
}

// Active returns the active document, or nil when none is open.
func (w *Workspace) Active() *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.active == "" {
		return nil
	}
	return w.docs[w.active]
}

// SetActive makes the document at path active.
func (w *Workspace) SetActive(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key, ok := w.keyFor(path)
	if !ok {
		return fmt.Errorf("activate %s: %w", path, ErrDocumentNotFound)
	}
	w.active = key
	return nil
}

// Next cycles to the document opened after the active one, wrapping around,
// and returns it.
func (w *Workspace) Next() *Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		return nil
	}
	cur := 0
	for i, k := range w.order {
		if k == w.active {
			cur = i
			break
		}
	}
	w.active = w.order[(cur+1)%len(w.order)]
	return w.docs[w.active]
}

// All returns the open documents in open order.
func (w *Workspace) All() []*Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Document, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.docs[k])
	}
	return out
}

// Count returns how many documents are open.
func (w *Workspace) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.docs)
}

// Dirty returns the documents with unsaved edits, in open order.
func (w *Workspace) Dirty() []*Document {
	var out []*Document
	for _, d := range w.All() {
		if d.Dirty() {
			out = append(out, d)
		}
	}
	return out
}

// HasDirty reports whether any document has unsaved edits.
func (w *Workspace) HasDirty() bool {
	for _, d := range w.All() {
		if d.Dirty() {
			return true
		}
	}
	return false
}

// SaveActive writes the active document to its path.
func (w *Workspace) SaveActive() error {
	d := w.Active()
	if d == nil {
		return ErrNoActiveDocument
	}
	return w.save(d)
}

// SaveAll writes every dirty document that has a path. Scratch documents are
// skipped; errors are joined so one bad path cannot hide another.
func (w *Workspace) SaveAll() error {
	var errs []error
	for _, d := range w.Dirty() {
		if d.IsScratch() {
			continue
		}
		if err := w.save(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Workspace) save(d *Document) error {
	if d.IsScratch() {
		return fmt.Errorf("save %s: %w", d.Name, ErrNoPath)
	}
	if err := persist.Save(d.Session.Document(), d.Path); err != nil {
		return err
	}
	d.dirty.Store(false)
	return nil
}

// keyFor maps a path to the internal key, accepting relative paths and
// scratch keys. Callers hold the lock.
func (w *Workspace) keyFor(path string) (string, bool) {
	if _, ok := w.docs[path]; ok {
		return path, true
	}
	if abs, err := filepath.Abs(path); err == nil {
		if _, ok := w.docs[abs]; ok {
			return abs, true
		}
	}
	return "", false
}

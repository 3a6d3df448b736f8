package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading. Editors often write a config file several times in
// quick succession (truncate, write, rename).
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the freshly loaded configuration after a reload.
type Handler func(Config)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period between the last file event and the
// reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher reloads one config file when it changes on disk. It watches the
// file's directory rather than the file itself, so saves that go through a
// temporary file and rename are still seen. Reloads that fail to parse are
// skipped; handlers only ever observe loadable configurations.
type Watcher struct {
	mu       sync.Mutex
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	handlers []Handler
	closeCh  chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewWatcher starts watching the config file at path. The file itself may
// not exist yet; its directory must.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watching config %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watching config %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config %s: %w", path, err)
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// OnChange registers a handler for successful reloads.
func (w *Watcher) OnChange(fn Handler) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.handlers = append(w.handlers, fn)
	w.mu.Unlock()
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			w.schedule()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; the next event still reloads.
		}
	}
}

// matches reports whether the event concerns our file with an operation
// that can change its content.
func (w *Watcher) matches(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload runs on the timer goroutine after the debounce period.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		// Likely a half-written file; keep the previous configuration.
		return
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, fn := range handlers {
		fn(cfg)
	}
}

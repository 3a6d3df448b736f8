// Package app wires configuration, logging, the workspace and the terminal
// binding into a runnable editor.
package app

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/tui"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means the standard
	// location.
	ConfigPath string

	// StatePath is the editor state file. Empty means the standard
	// location.
	StatePath string

	// Files are documents to open on startup. Without any, the last
	// session's documents reopen.
	Files []string

	// LogLevel names the minimum log severity.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// ReadOnly opens every document read-only and disables saving.
	ReadOnly bool
}

// App owns the long-lived pieces of a running editor: the configuration and
// its watcher, the event bus, the workspace of open documents and the
// terminal editor bound to the active one.
type App struct {
	opts   Options
	logger *Logger
	bus    *event.Bus
	ws     *Workspace
	state  *State

	configPath string
	statePath  string

	mu     sync.Mutex
	cfg    config.Config
	editor *tui.Editor

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New builds an application from options. Configuration problems degrade to
// defaults rather than failing startup; a broken config file should not keep
// the editor from opening.
func New(opts Options) (*App, error) {
	a := &App{
		opts: opts,
		logger: NewLogger(LoggerConfig{
			Level:  ParseLogLevel(opts.LogLevel),
			Output: opts.LogOutput,
			Prefix: "inkwell",
		}),
		bus: event.NewBus(),
	}

	a.configPath = opts.ConfigPath
	if a.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			a.logger.Warn("config location unavailable", "error", err)
		} else {
			a.configPath = path
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.logger.Warn("config load failed, using defaults", "path", a.configPath, "error", err)
	}
	a.cfg = cfg

	a.statePath = opts.StatePath
	if a.statePath == "" {
		if path, err := DefaultStatePath(); err == nil {
			a.statePath = path
		}
	}
	a.state = LoadState(a.statePath)

	a.ws = NewWorkspace(a.bus, a.newSession)
	return a, nil
}

// Workspace returns the document workspace.
func (a *App) Workspace() *Workspace { return a.ws }

// Bus returns the event bus.
func (a *App) Bus() *event.Bus { return a.bus }

// Config returns the current configuration.
func (a *App) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Run opens the documents, brings up the terminal and blocks in the editor
// loop until quit. On the way out it flushes open history batches, saves
// dirty documents and records the session state.
func (a *App) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)
	a.stop = make(chan struct{})

	a.openDocuments()
	active := a.ws.Active()

	scr, err := tui.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()

	editor := tui.NewEditor(active.Session,
		tui.WithScreen(scr),
		tui.WithEditorBus(a.bus),
		tui.WithTheme(tui.NewTheme(a.Config().UI)),
		tui.WithName(active.Name),
		tui.WithSaveFunc(a.saveActive),
	)
	a.mu.Lock()
	a.editor = editor
	a.mu.Unlock()

	if w := a.watchConfig(); w != nil {
		defer w.Close()
	}
	if !a.opts.ReadOnly {
		a.wg.Add(1)
		go a.autosaveLoop()
	}

	runErr := editor.Run()

	close(a.stop)
	a.wg.Wait()
	a.finish()
	return runErr
}

// Stop asks the editor loop to exit. Safe to call from a signal handler
// goroutine; Run still performs the full flush-save-state shutdown.
func (a *App) Stop() {
	a.mu.Lock()
	editor := a.editor
	a.mu.Unlock()
	if editor != nil {
		editor.Quit()
	}
}

// ============================================================================
// Startup
// ============================================================================

// openDocuments opens the startup documents: the files from the command
// line, or failing that the previous session's files, or a scratch document.
// Recorded carets are restored for any document that still has the block.
func (a *App) openDocuments() {
	files := a.opts.Files
	fromState := false
	if len(files) == 0 {
		files = a.state.Files()
		fromState = true
	}

	for _, path := range files {
		if _, err := a.ws.Open(path); err != nil {
			a.logger.Warn("open failed", "path", path, "error", err)
		}
	}
	if a.ws.Count() == 0 {
		a.ws.OpenScratch()
	}
	if fromState {
		if active := a.state.Active(); active != "" {
			_ = a.ws.SetActive(active)
		}
	}

	for _, d := range a.ws.All() {
		block, offset, ok := a.state.Caret(d.Path)
		if !ok {
			continue
		}
		if _, found := d.Session.Block(engine.BlockID(block)); found {
			d.Session.SetCaret(engine.BlockID(block), offset)
		}
	}
}

// newSession is the workspace's session factory. Every session shares the
// bus and the logger and takes its limits from the current configuration.
func (a *App) newSession(seed *document.Document) *engine.Session {
	cfg := a.Config()
	opts := []engine.Option{
		engine.WithBus(a.bus),
		engine.WithLogger(a.logger.WithComponent("engine")),
		engine.WithQuietInterval(cfg.QuietInterval()),
		engine.WithMaxEntries(cfg.Editor.MaxUndoEntries),
		engine.WithMaxDepth(cfg.Editor.MaxDepth),
	}
	if a.opts.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	if seed != nil {
		opts = append(opts, engine.WithDocument(*seed))
	}
	return engine.New(opts...)
}

// ============================================================================
// Saving and shutdown
// ============================================================================

// saveActive is the editor's Ctrl-S action.
func (a *App) saveActive() error {
	if a.opts.ReadOnly {
		return engine.ErrReadOnly
	}
	if err := a.ws.SaveActive(); err != nil {
		return err
	}
	if d := a.ws.Active(); d != nil {
		a.logger.Info("document saved", "path", d.Path)
	}
	return nil
}

// finish runs the shutdown sequence: commit open history batches, save what
// is dirty, record the session state.
func (a *App) finish() {
	for _, d := range a.ws.All() {
		d.Session.FlushBatch()
	}
	if !a.opts.ReadOnly {
		if err := a.ws.SaveAll(); err != nil {
			a.logger.Error("save on exit failed", "error", err)
		}
	}
	a.recordState()
}

// recordState writes the session state file. Scratch documents have no path
// and are not recorded.
func (a *App) recordState() {
	if a.statePath == "" {
		return
	}
	var files []string
	for _, d := range a.ws.All() {
		if d.IsScratch() {
			continue
		}
		files = append(files, d.Path)
		if pos, ok := d.Session.Selection().Head(); ok {
			a.state.SetCaret(d.Path, string(pos.Block), pos.Offset)
		}
	}
	a.state.SetFiles(files)
	if d := a.ws.Active(); d != nil && !d.IsScratch() {
		a.state.SetActive(d.Path)
	}
	if err := a.state.Save(a.statePath); err != nil {
		a.logger.Warn("state save failed", "error", err)
	}
}

// ============================================================================
// Live configuration
// ============================================================================

// watchConfig starts the config file watcher. A missing config directory
// just means no live reload.
func (a *App) watchConfig() *config.Watcher {
	if a.configPath == "" {
		return nil
	}
	w, err := config.NewWatcher(a.configPath)
	if err != nil {
		a.logger.Debug("config watch unavailable", "path", a.configPath, "error", err)
		return nil
	}
	w.OnChange(a.applyConfig)
	return w
}

// applyConfig installs a reloaded configuration. The theme and the autosave
// cadence take effect immediately; session limits apply to documents opened
// from now on, since a live session keeps the limits it was built with.
func (a *App) applyConfig(cfg config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	editor := a.editor
	a.mu.Unlock()

	if editor != nil {
		editor.SetTheme(tui.NewTheme(cfg.UI))
	}
	a.bus.Publish(event.New(event.TopicConfigChanged, event.ConfigChange{Path: a.configPath}))
	a.logger.Info("configuration reloaded", "path", a.configPath)
}

// autosaveLoop periodically saves dirty documents. The enabled flag and the
// interval re-read the configuration each round, so a live reload can change
// the cadence or turn autosave on and off.
func (a *App) autosaveLoop() {
	defer a.wg.Done()
	timer := time.NewTimer(a.Config().AutosaveInterval())
	defer timer.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-timer.C:
			if a.Config().Storage.AutosaveEnabled && a.ws.HasDirty() {
				if err := a.ws.SaveAll(); err != nil {
					a.logger.Error("autosave failed", "error", err)
				} else {
					a.logger.Debug("autosaved", "documents", len(a.ws.All()))
				}
			}
			timer.Reset(a.Config().AutosaveInterval())
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const watchTimeout = 5 * time.Second

func startWatcher(t *testing.T, path string) (*Watcher, chan Config) {
	t.Helper()
	w, err := NewWatcher(path, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	got := make(chan Config, 4)
	w.OnChange(func(cfg Config) { got <- cfg })
	return w, got
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "[editor]\nmax_depth = 8\n")
	_, got := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("[editor]\nmax_depth = 9\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Editor.MaxDepth != 9 {
			t.Errorf("reloaded max_depth = %d, want 9", cfg.Editor.MaxDepth)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherSeesAtomicReplace(t *testing.T) {
	path := writeConfig(t, "[ui]\ntheme = \"dark\"\n")
	_, got := startWatcher(t, path)

	// Save the way the editor does: write a sibling, rename over the target.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte("[ui]\ntheme = \"light\"\n"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherSkipsBrokenConfig(t *testing.T) {
	path := writeConfig(t, "[editor]\nmax_depth = 8\n")
	_, got := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// Parse failure is deterministic, so a handler call here is a real bug.
	select {
	case cfg := <-got:
		t.Fatalf("handler fired for broken config: %+v", cfg)
	case <-time.After(400 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("[editor]\nmax_depth = 10\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Editor.MaxDepth != 10 {
			t.Errorf("reloaded max_depth = %d, want 10", cfg.Editor.MaxDepth)
		}
	case <-time.After(watchTimeout):
		t.Fatal("watcher gave up after a broken config")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\nmax_depth = 8\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, got := startWatcher(t, path)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("[ui]\n"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case cfg := <-got:
		t.Fatalf("handler fired for unrelated file: %+v", cfg)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := writeConfig(t, "[editor]\nmax_depth = 8\n")
	w, _ := startWatcher(t, path)

	w.Close()
	w.Close()
}

func TestWatcherMissingFile(t *testing.T) {
	// The directory must exist, the file itself may not yet.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	_, got := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("[editor]\nmax_depth = 11\n"), 0o644); err != nil {
		t.Fatalf("create config: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Editor.MaxDepth != 11 {
			t.Errorf("reloaded max_depth = %d, want 11", cfg.Editor.MaxDepth)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for first write")
	}
}

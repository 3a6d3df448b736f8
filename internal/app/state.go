package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// stateVersion is written into every state file.
const stateVersion = 1

// State is the cross-run editor state: which documents were open, which one
// was active and where the caret sat in each. It holds the file's raw JSON
// and edits it in place, so fields written by newer versions or other tools
// survive a load–save cycle untouched.
type State struct {
	raw []byte
}

// NewState returns an empty state.
func NewState() *State {
	return &State{raw: []byte(`{}`)}
}

// LoadState reads the state file at path. A missing or unreadable file is
// not an error: state is disposable, so the editor starts fresh. The same
// goes for a file that is not valid JSON.
func LoadState(path string) *State {
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return NewState()
	}
	return &State{raw: data}
}

// Save writes the state atomically, creating the directory if needed.
func (st *State) Save(path string) error {
	raw, err := sjson.SetBytes(st.raw, "version", stateVersion)
	if err != nil {
		return fmt.Errorf("save state %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save state %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("save state %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save state %s: %w", path, err)
	}
	return nil
}

// Files returns the recorded open-document paths in order.
func (st *State) Files() []string {
	var out []string
	for _, r := range gjson.GetBytes(st.raw, "files").Array() {
		if s := r.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SetFiles records the open-document paths.
func (st *State) SetFiles(paths []string) {
	st.set("files", paths)
}

// Active returns the recorded active document path.
func (st *State) Active() string {
	return gjson.GetBytes(st.raw, "active").String()
}

// SetActive records the active document path.
func (st *State) SetActive(path string) {
	st.set("active", path)
}

// Caret returns the recorded caret for a document path.
func (st *State) Caret(path string) (block string, offset int, ok bool) {
	i := st.caretIndex(path)
	if i < 0 {
		return "", 0, false
	}
	c := gjson.GetBytes(st.raw, fmt.Sprintf("carets.%d", i))
	return c.Get("block").String(), int(c.Get("offset").Int()), true
}

// SetCaret records the caret for a document path, replacing any previous
// entry for the same path.
func (st *State) SetCaret(path, block string, offset int) {
	key := "carets.-1"
	if i := st.caretIndex(path); i >= 0 {
		key = fmt.Sprintf("carets.%d", i)
	}
	st.set(key, map[string]any{
		"path":   path,
		"block":  block,
		"offset": offset,
	})
}

// caretIndex finds the carets entry for path. Carets live in an array rather
// than an object so paths never need key escaping.
func (st *State) caretIndex(path string) int {
	for i, c := range gjson.GetBytes(st.raw, "carets").Array() {
		if c.Get("path").String() == path {
			return i
		}
	}
	return -1
}

func (st *State) set(key string, value any) {
	if raw, err := sjson.SetBytes(st.raw, key, value); err == nil {
		st.raw = raw
	}
}

// DefaultStatePath returns the standard state location:
// os.UserConfigDir()/inkwell/state.json.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving state directory: %w", err)
	}
	return filepath.Join(dir, "inkwell", "state.json"), nil
}

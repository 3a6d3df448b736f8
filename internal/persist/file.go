package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/inkwell/internal/engine/document"
)

// Save writes the document to path atomically: the envelope goes to a
// temporary file in the same directory first, then replaces path by rename.
// Missing directories are created.
func Save(d document.Document, path string) error {
	data, err := EncodeIndent(d)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads a native document file. A missing file surfaces wrapped so the
// caller can test errors.Is(err, fs.ErrNotExist) and start fresh.
func Load(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, fmt.Errorf("load %s: %w", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		return document.Document{}, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

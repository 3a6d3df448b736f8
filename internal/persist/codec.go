package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
)

// currentVersion is the newest envelope version this build understands.
const currentVersion = 1

// wireMark is the JSON form of richtext.Mark. Mark types travel by name so
// files stay readable and stable across builds.
type wireMark struct {
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// wireRun is the JSON form of richtext.Run.
type wireRun struct {
	Text  string     `json:"text"`
	Marks []wireMark `json:"marks,omitempty"`
}

// wireBlock is the JSON form of document.Block. The block's id is the table
// key, so it is not repeated here.
type wireBlock struct {
	Kind      string    `json:"kind"`
	Runs      []wireRun `json:"runs,omitempty"`
	Children  []string  `json:"children,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Source    string    `json:"source,omitempty"`
	Caption   []wireRun `json:"caption,omitempty"`
	Width     float64   `json:"width,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// wireDocument is the envelope.
type wireDocument struct {
	Version int                  `json:"version"`
	SavedAt time.Time            `json:"saved_at"`
	Roots   []string             `json:"roots"`
	Blocks  map[string]wireBlock `json:"blocks"`
}

// Encode serializes a document into the native envelope.
func Encode(d document.Document) ([]byte, error) {
	data, err := json.Marshal(toWire(d))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// EncodeIndent serializes a document into the native envelope with
// indentation for readability.
func EncodeIndent(d document.Document) ([]byte, error) {
	data, err := json.MarshalIndent(toWire(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode reconstructs a document from the native envelope. The result is
// validated before it is returned; a file written by a newer envelope
// version fails with ErrUnsupportedVersion instead of being partially read.
func Decode(data []byte) (document.Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return document.Document{}, fmt.Errorf("decode document: %w", err)
	}
	if w.Version < 1 {
		return document.Document{}, fmt.Errorf("decode document: missing version: %w", ErrMalformed)
	}
	if w.Version > currentVersion {
		return document.Document{}, fmt.Errorf("decode document: version %d (max %d): %w",
			w.Version, currentVersion, ErrUnsupportedVersion)
	}
	if len(w.Roots) == 0 || len(w.Blocks) == 0 {
		return document.Document{}, fmt.Errorf("decode document: no blocks: %w", ErrMalformed)
	}

	blocks := make([]document.Block, 0, len(w.Blocks))
	for id, wb := range w.Blocks {
		kind, ok := document.ParseKind(wb.Kind)
		if !ok {
			return document.Document{}, fmt.Errorf("decode block %s: unknown kind %q: %w",
				id, wb.Kind, ErrMalformed)
		}
		blocks = append(blocks, document.Block{
			ID:        document.BlockID(id),
			Kind:      kind,
			Children:  blockIDs(wb.Children),
			Runs:      fromWireRuns(wb.Runs),
			Collapsed: wb.Collapsed,
			Source:    wb.Source,
			Caption:   fromWireRuns(wb.Caption),
			Width:     wb.Width,
			CreatedAt: wb.CreatedAt,
			UpdatedAt: wb.UpdatedAt,
		})
	}
	d, err := document.Build(blockIDs(w.Roots), blocks, 0)
	if err != nil {
		return document.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}

func toWire(d document.Document) wireDocument {
	w := wireDocument{
		Version: currentVersion,
		SavedAt: time.Now().UTC(),
		Roots:   idStrings(d.Roots()),
		Blocks:  make(map[string]wireBlock, d.Len()),
	}
	d.Walk(func(b document.Block, _ int) bool {
		w.Blocks[string(b.ID)] = wireBlock{
			Kind:      b.Kind.String(),
			Runs:      toWireRuns(b.Runs),
			Children:  idStrings(b.Children),
			Collapsed: b.Collapsed,
			Source:    b.Source,
			Caption:   toWireRuns(b.Caption),
			Width:     b.Width,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		}
		return true
	})
	return w
}

func toWireRuns(runs richtext.Runs) []wireRun {
	if len(runs) == 0 {
		return nil
	}
	out := make([]wireRun, len(runs))
	for i, r := range runs {
		wr := wireRun{Text: r.Text}
		for _, m := range r.Marks {
			wr.Marks = append(wr.Marks, wireMark{Type: m.Type.String(), Href: m.Href})
		}
		out[i] = wr
	}
	return out
}

// fromWireRuns rebuilds runs, dropping marks with unknown type names: losing
// a decoration beats losing the text.
func fromWireRuns(wire []wireRun) richtext.Runs {
	if len(wire) == 0 {
		return nil
	}
	runs := make(richtext.Runs, 0, len(wire))
	for _, wr := range wire {
		run := richtext.Run{Text: wr.Text}
		for _, wm := range wr.Marks {
			t, ok := richtext.ParseMarkType(wm.Type)
			if !ok {
				continue
			}
			run.Marks = run.Marks.With(richtext.Mark{Type: t, Href: wm.Href})
		}
		runs = append(runs, run)
	}
	return richtext.Normalize(runs)
}

func idStrings(ids []document.BlockID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func blockIDs(ids []string) []document.BlockID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]document.BlockID, len(ids))
	for i, id := range ids {
		out[i] = document.BlockID(id)
	}
	return out
}

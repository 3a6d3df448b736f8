package history

import (
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// OpKind labels the operation that produced a history entry. Text and
// format edits batch; every other kind commits immediately.
type OpKind uint8

// Operation kinds.
const (
	OpInitial OpKind = iota
	OpInsert
	OpDelete
	OpMove
	OpSplit
	OpMerge
	OpTransform
	OpIndent
	OpOutdent
	OpText
	OpFormat
	OpToggle
	OpImage
	OpWidth
	OpReplace
)

var opNames = map[OpKind]string{
	OpInitial:   "initial",
	OpInsert:    "insert",
	OpDelete:    "delete",
	OpMove:      "move",
	OpSplit:     "split",
	OpMerge:     "merge",
	OpTransform: "transform",
	OpIndent:    "indent",
	OpOutdent:   "outdent",
	OpText:      "text",
	OpFormat:    "format",
	OpToggle:    "toggle",
	OpImage:     "image",
	OpWidth:     "width",
	OpReplace:   "replace",
}

// String returns the canonical name of the kind.
func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Batches reports whether consecutive operations of this kind on the same
// block coalesce into a single history entry.
func (k OpKind) Batches() bool {
	return k == OpText || k == OpFormat
}

// Entry is one recorded state: a full snapshot of the document and the
// selection after an operation completed, with the operation that produced
// it. Entries own deep copies, so restoring one never aliases mutable state
// back into the timeline.
type Entry struct {
	Doc   document.Document
	Sel   selection.Selection
	Op    OpKind
	Block document.BlockID
	At    time.Time
}

// snapshot returns a deep copy safe to hand outside the timeline.
func (e Entry) snapshot() Entry {
	e.Doc = e.Doc.Clone()
	e.Sel = e.Sel.Clone()
	return e
}

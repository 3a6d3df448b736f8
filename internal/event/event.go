package event

import "time"

// Topics published by the editing engine. Subscribers may match them exactly
// or with wildcard patterns ("document.*", "history.**").
const (
	// TopicDocumentChanged fires after any operation that changed the block
	// tree or a block's content. Payload: DocumentChange.
	TopicDocumentChanged Topic = "document.changed"

	// TopicSelectionChanged fires when an operation moved or replaced the
	// selection. Payload: SelectionChange.
	TopicSelectionChanged Topic = "selection.changed"

	// TopicHistoryChanged fires when undo/redo availability changed.
	// Payload: HistoryChange.
	TopicHistoryChanged Topic = "history.changed"

	// TopicHistoryBatchFlushed fires when a text batch committed on its
	// quiet-interval deadline. Payload: BatchFlush.
	TopicHistoryBatchFlushed Topic = "history.batch.flushed"

	// TopicFocusRequested asks the binding layer to place its caret.
	// Payload: FocusRequest.
	TopicFocusRequested Topic = "editor.focus.requested"

	// TopicConfigChanged fires when the configuration file was reloaded.
	// Payload: ConfigChange.
	TopicConfigChanged Topic = "config.changed"
)

// Event is a published notification. Payloads are plain structs that name
// blocks by id string, so subscribers need no engine imports.
type Event struct {
	Topic   Topic
	Time    time.Time
	Payload any
}

// New builds an event stamped with the current time.
func New(topic Topic, payload any) Event {
	return Event{Topic: topic, Time: time.Now(), Payload: payload}
}

// FocusRequest asks the binding layer to place the caret inside a block.
type FocusRequest struct {
	Block  string
	Offset int
}

// DocumentChange reports a completed document operation.
type DocumentChange struct {
	// Op is the operation name, such as "split" or "text".
	Op string

	// Blocks lists the ids the operation touched. Empty means the change
	// was document-wide, as after an undo.
	Blocks []string
}

// SelectionChange reports the selection after an operation.
type SelectionChange struct {
	// Selection is the compact rendering of the new selection, such as
	// "caret(id:3)" or "none".
	Selection string
}

// HistoryChange reports undo/redo availability after a commit or restore.
type HistoryChange struct {
	UndoDepth int
	RedoDepth int
}

// BatchFlush reports a text batch committed by its quiet-interval deadline.
type BatchFlush struct {
	Block string
	Op    string
}

// ConfigChange reports a live configuration reload.
type ConfigChange struct {
	Path string
}

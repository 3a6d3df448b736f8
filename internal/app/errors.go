package app

import "errors"

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called while the app is running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNoActiveDocument indicates no document is currently active.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentNotFound indicates the path is not open in the workspace.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoPath indicates a save was attempted on a scratch document.
	ErrNoPath = errors.New("document has no file path")
)

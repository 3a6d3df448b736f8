package persist

import "errors"

var (
	// ErrMalformed reports input that is not a document in any shape the
	// package understands.
	ErrMalformed = errors.New("malformed document data")

	// ErrUnsupportedVersion reports an envelope written by a newer build.
	ErrUnsupportedVersion = errors.New("unsupported document version")

	// ErrEmptyImport reports foreign input from which no blocks could be
	// recovered.
	ErrEmptyImport = errors.New("import recovered no blocks")
)

package engine

import (
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/event"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
	DefaultQuietInterval  = history.DefaultQuietInterval
	DefaultMaxDepth       = document.DefaultMaxDepth
)

// Option configures a Session during creation.
type Option func(*Session)

// WithDocument seeds the session with an existing document, for example one
// loaded from disk. The session keeps its own deep copy.
func WithDocument(d document.Document) Option {
	return func(s *Session) {
		c := d.Clone()
		s.initDoc = &c
	}
}

// WithBus connects the session to an event bus. Without one the session
// publishes nothing.
func WithBus(b *event.Bus) Option {
	return func(s *Session) {
		s.bus = b
	}
}

// WithClock substitutes the history batching clock. Tests drive a
// history.ManualClock.
func WithClock(c history.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMaxEntries bounds the undo timeline.
func WithMaxEntries(n int) Option {
	return func(s *Session) {
		if n >= 2 {
			s.maxEntries = n
		}
	}
}

// WithMaxDepth bounds block nesting.
func WithMaxDepth(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithQuietInterval sets how long a burst of text edits may pause before the
// open history batch commits.
func WithQuietInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithLogger attaches a logger for operation tracing.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithReadOnly creates a session whose mutating operations return
// ErrReadOnly.
func WithReadOnly() Option {
	return func(s *Session) {
		s.readOnly = true
	}
}

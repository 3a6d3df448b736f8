package engine

import (
	"fmt"
	"testing"

	"github.com/dshills/inkwell/internal/engine/history"
)

// ============================================================================
// Setup Helpers
// ============================================================================

// setupLargeSession builds a session with n sibling paragraphs of 80 runes
// each. The batch clock is manual so timers never fire mid-benchmark.
func setupLargeSession(b *testing.B, n int) (*Session, []BlockID) {
	b.Helper()
	s := New(WithClock(history.NewManualClock()), WithMaxEntries(2*n+2))
	ids := s.Document().Roots()
	last := ids[0]
	for i := 1; i < n; i++ {
		id, err := s.InsertBlockAfter(last, KindParagraph)
		if err != nil {
			b.Fatalf("setup insert: %v", err)
		}
		ids = append(ids, id)
		last = id
	}
	line := ""
	for len(line) < 80 {
		line += "abcdefghij"
	}
	for i, id := range ids {
		if err := s.InsertText(id, 0, fmt.Sprintf("%03d %s", i, line)); err != nil {
			b.Fatalf("setup text: %v", err)
		}
		s.FlushBatch()
	}
	return s, ids
}

// ============================================================================
// Read Benchmarks
// ============================================================================

func BenchmarkSessionDocument(b *testing.B) {
	s, _ := setupLargeSession(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Document()
	}
}

func BenchmarkSessionPlainText(b *testing.B) {
	s, ids := setupLargeSession(b, 1000)
	mid := ids[len(ids)/2]
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.PlainText(mid)
	}
}

func BenchmarkSessionStats(b *testing.B) {
	s, _ := setupLargeSession(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Stats()
	}
}

// ============================================================================
// Write Benchmarks
// ============================================================================

func BenchmarkSessionInsertText(b *testing.B) {
	s, ids := setupLargeSession(b, 100)
	mid := ids[len(ids)/2]
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := s.InsertText(mid, 0, "x"); err != nil {
			b.Fatalf("insert: %v", err)
		}
	}
}

func BenchmarkSessionStructuralCommit(b *testing.B) {
	s, ids := setupLargeSession(b, 100)
	mid := ids[len(ids)/2]
	kinds := []Kind{KindQuote, KindParagraph}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := s.TransformBlock(mid, kinds[i%2]); err != nil {
			b.Fatalf("transform: %v", err)
		}
	}
}

func BenchmarkSessionUndoRedo(b *testing.B) {
	s, ids := setupLargeSession(b, 100)
	mid := ids[len(ids)/2]
	if err := s.InsertText(mid, 0, "undo me"); err != nil {
		b.Fatalf("insert: %v", err)
	}
	s.FlushBatch()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Undo()
		s.Redo()
	}
}

func BenchmarkSessionSplitMerge(b *testing.B) {
	s, ids := setupLargeSession(b, 100)
	mid := ids[len(ids)/2]
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		nid, err := s.SplitBlock(mid, 40)
		if err != nil {
			b.Fatalf("split: %v", err)
		}
		if _, err := s.MergeWithPrevious(nid); err != nil {
			b.Fatalf("merge: %v", err)
		}
	}
}

// Package history implements the bounded undo/redo stack over full
// annotation-set snapshots.
package history

import (
	"time"

	"github.com/example/markpix/internal/annotation"
	"github.com/example/markpix/internal/geom"
)

// MaxEntries bounds the stack; pushing beyond it evicts the oldest entry.
const MaxEntries = 50

// Entry is an immutable deep snapshot of the editing state at one point in
// time. Entries are never mutated after Push stores them; every restore hands
// out fresh copies.
type Entry struct {
	Annotations []annotation.Annotation
	CropMask    *geom.Rect
	CreatedAt   time.Time
}

func (e Entry) clone() Entry {
	out := Entry{
		Annotations: annotation.CloneAll(e.Annotations),
		CreatedAt:   e.CreatedAt,
	}
	if e.CropMask != nil {
		m := *e.CropMask
		out.CropMask = &m
	}
	return out
}

// Stack is a linear undo history with a current index. Index -1 denotes the
// state before the first entry (empty canvas). The invariant
// -1 <= index < len(entries) holds at all times; breaking it is a logic bug,
// not a runtime condition.
type Stack struct {
	entries []Entry
	index   int
}

// New returns an empty history stack.
func New() *Stack {
	return &Stack{index: -1}
}

// Len returns the number of stored entries.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the current position, -1 meaning before the first entry.
func (s *Stack) Index() int { return s.index }

// CanUndo reports whether Undo would change state.
func (s *Stack) CanUndo() bool { return s.index >= 0 }

// CanRedo reports whether Redo would change state.
func (s *Stack) CanRedo() bool { return s.index < len(s.entries)-1 }

// Push snapshots the given annotations and crop mask. Any redo branch beyond
// the current index is discarded, and the oldest entry is evicted once the
// stack exceeds MaxEntries. Eviction shifts the index down with the entries
// so the two stay consistent.
func (s *Stack) Push(anns []annotation.Annotation, cropMask *geom.Rect) {
	s.assertIndex()
	entry := Entry{
		Annotations: anns,
		CropMask:    cropMask,
		CreatedAt:   time.Now(),
	}.clone()

	s.entries = append(s.entries[:s.index+1], entry)
	s.index = len(s.entries) - 1

	if len(s.entries) > MaxEntries {
		drop := len(s.entries) - MaxEntries
		s.entries = append([]Entry(nil), s.entries[drop:]...)
		s.index -= drop
		if s.index < -1 {
			s.index = -1
		}
	}
}

// Undo steps back one entry and returns a deep copy of the state to restore.
// Stepping back from the first entry yields the empty initial state. The
// second return is false when there is nothing to undo.
func (s *Stack) Undo() (Entry, bool) {
	s.assertIndex()
	if s.index < 0 {
		return Entry{}, false
	}
	if s.index == 0 {
		s.index = -1
		return Entry{}, true
	}
	s.index--
	return s.entries[s.index].clone(), true
}

// Redo steps forward one entry and returns a deep copy of the state to
// restore. The second return is false when there is nothing to redo.
func (s *Stack) Redo() (Entry, bool) {
	s.assertIndex()
	if s.index >= len(s.entries)-1 {
		return Entry{}, false
	}
	s.index++
	return s.entries[s.index].clone(), true
}

// Clear drops all entries and resets the index.
func (s *Stack) Clear() {
	s.entries = nil
	s.index = -1
}

func (s *Stack) assertIndex() {
	if s.index < -1 || s.index >= len(s.entries) {
		panic("history: index out of range")
	}
}

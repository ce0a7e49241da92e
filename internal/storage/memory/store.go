// Package memory keeps recent run metadata in a fixed-size ring buffer.
// It is used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

// DefaultCapacity is used when NewStore is given a non-positive capacity.
const DefaultCapacity = 500

// Store is an in-memory core.RunRecorder. Once full, the oldest run is
// overwritten. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	runs  []core.Run
	next  int
	count int
}

// NewStore creates a store holding at most capacity runs.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{runs: make([]core.Run, capacity)}
}

// Record appends run, evicting the oldest entry when full.
func (s *Store) Record(ctx context.Context, run core.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[s.next] = run
	s.next = (s.next + 1) % len(s.runs)
	if s.count < len(s.runs) {
		s.count++
	}
	return nil
}

// Recent returns up to limit runs, most recently recorded first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.count {
		limit = s.count
	}

	out := make([]core.Run, 0, limit)
	idx := s.next
	for range limit {
		idx = (idx - 1 + len(s.runs)) % len(s.runs)
		out = append(out, s.runs[idx])
	}
	return out, nil
}

// Len returns the number of stored runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Capacity returns the maximum number of stored runs.
func (s *Store) Capacity() int {
	return len(s.runs)
}

var _ core.RunRecorder = (*Store)(nil)

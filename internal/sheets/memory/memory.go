package memory

import (
	"context"
	"sort"
	"sync"

	"ledger/internal/core"
	ports "ledger/internal/sheets"
)

var _ ports.TransactionMirror = (*Store)(nil)

// Store is an in-process mirror used for local runs and tests.
type Store struct {
	mu        sync.Mutex
	rows      map[int64]core.EnrichedTransaction
	summaries map[int64][]core.DateGroup
	writes    int
}

func New() *Store {
	return &Store{
		rows:      make(map[int64]core.EnrichedTransaction),
		summaries: make(map[int64][]core.DateGroup),
	}
}

func (s *Store) UpsertTransaction(_ context.Context, t core.EnrichedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID] = t
	s.writes++
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	s.writes++
	return nil
}

func (s *Store) MirroredIDs(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) WriteDailySummary(_ context.Context, ownerID int64, groups []core.DateGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[ownerID] = append([]core.DateGroup(nil), groups...)
	s.writes++
	return nil
}

// Rows returns the mirrored transactions ordered by id.
func (s *Store) Rows() []core.EnrichedTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.EnrichedTransaction, 0, len(s.rows))
	for _, t := range s.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Row returns the mirrored transaction with id, if any.
func (s *Store) Row(id int64) (core.EnrichedTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	return t, ok
}

// Summary returns the last summary written for ownerID.
func (s *Store) Summary(ownerID int64) []core.DateGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DateGroup(nil), s.summaries[ownerID]...)
}

// Writes counts every mutating call.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

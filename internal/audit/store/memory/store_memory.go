// Package memory holds an in-memory audit store for tests and development.
package memory

import (
	"context"
	"sync"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   []audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	s.nextID = 1
}

func (s *InMemoryStore) Append(_ context.Context, e *audit.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := e.Record()
	rec.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, rec)
	return rec.ID, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(audit.Record) bool { return true }), nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(r audit.Record) bool { return r.AffectedUser == userID }), nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id int64) (audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return audit.Record{}, sentinel.ErrNotFound
}

// collect walks rows newest first. Rows append in insertion order, which is
// also timestamp order for this store's use in tests.
func (s *InMemoryStore) collect(limit int, match func(audit.Record) bool) []audit.Record {
	var out []audit.Record
	for i := len(s.rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if match(s.rows[i]) {
			out = append(out, s.rows[i])
		}
	}
	return out
}

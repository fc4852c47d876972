package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, accountID uuid.UUID, name string, isAdmin bool) (*Record, error) {
	rec, err := newRecord(accountID, name, isAdmin, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.records[rec.Token] = *rec
	s.mu.Unlock()

	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if rec.Expired(s.now()) {
		s.mu.Lock()
		delete(s.records, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	rec.Token = token
	return &rec, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.records, token)
	s.mu.Unlock()
	return nil
}

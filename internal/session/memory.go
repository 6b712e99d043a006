package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implementa Store con un mapa en memoria. Tras Close, toda
// operación retorna ErrClosed.
type MemoryStore struct {
	mu      sync.RWMutex
	closed  bool
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	record, exists := s.records[id]
	if !exists {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	now := time.Now()
	if existing, ok := s.records[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}

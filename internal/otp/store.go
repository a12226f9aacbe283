package otp

import "sync"

// Store holds at most one Record per identity. Implementations must be safe for
// concurrent use; all operations are in-memory and non-blocking.
type Store interface {
	// Put creates or replaces the record for identity.
	Put(identity string, record Record)
	Get(identity string) (Record, bool)
	Delete(identity string)
	// IncrementAttempts bumps the attempt counter and returns the new value.
	// It returns 0 when no record exists.
	IncrementAttempts(identity string) int
	Len() int
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore builds a process-local store. Records do not survive restarts.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Put(identity string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identity] = record
}

func (s *memoryStore) Get(identity string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[identity]
	return rec, ok
}

func (s *memoryStore) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
}

func (s *memoryStore) IncrementAttempts(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	if !ok {
		return 0
	}
	rec.Attempts++
	s.records[identity] = rec
	return rec.Attempts
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

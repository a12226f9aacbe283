package admission

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu   sync.RWMutex
	subs map[string]Submission
}

// NewMemoryRepository builds an in-memory submission store used when no database is configured.
func NewMemoryRepository() Repository {
	return &memoryRepository{subs: make(map[string]Submission)}
}

func (r *memoryRepository) Create(_ context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subs[sub.ID]; exists {
		return errors.New("submission exists")
	}
	sub.Payload = append([]byte(nil), sub.Payload...)
	r.subs[sub.ID] = sub
	return nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return ErrSubmissionNotFound
	}
	sub.Status = status
	sub.LastError = lastError
	sub.UpdatedAt = time.Now().UTC()
	r.subs[id] = sub
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

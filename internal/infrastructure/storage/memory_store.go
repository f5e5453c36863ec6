package storage

import (
	"context"
	"sync"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// InProcessStore keeps memory for the lifetime of the process only.
type InProcessStore struct {
	mu     sync.RWMutex
	memory domain.FullMemory
}

var _ ports.MemoryStore = (*InProcessStore)(nil)

// NewInProcessStore starts from seed.
func NewInProcessStore(seed domain.FullMemory) *InProcessStore {
	return &InProcessStore{memory: seed.Clone()}
}

// Get returns a copy of the current memory.
func (s *InProcessStore) Get(context.Context) (domain.FullMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memory.Clone(), nil
}

// Put replaces the stored memory.
func (s *InProcessStore) Put(_ context.Context, memory domain.FullMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = memory.Clone()
	return nil
}

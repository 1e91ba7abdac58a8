package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the snapshot payload in memory.
func (s *Store) Save(ctx context.Context, slot string, payload []byte) error {
	// Copy to ensure isolation, similar to serialization.
	copied := append([]byte(nil), payload...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[slot] = copied
	return nil
}

// Load retrieves the snapshot payload from memory.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[slot]
	if !ok {
		return nil, dialogue.ErrSlotNotFound
	}

	// Copy on read so the caller cannot mutate stored bytes.
	return append([]byte(nil), payload...), nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, slot)
	return nil
}

// List returns the occupied slots.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]string, 0, len(s.data))
	for slot := range s.data {
		slots = append(slots, slot)
	}
	return slots, nil
}

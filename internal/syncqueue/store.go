package syncqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// QueueStore persists the whole pending queue. Save always receives the
// complete queue; Load returns whatever was saved last.
type QueueStore interface {
	Load(ctx context.Context) ([]models.QueueItem, error)
	Save(ctx context.Context, items []models.QueueItem) error
}

// EncodeQueue serializes a queue as a JSON array.
func EncodeQueue(items []models.QueueItem) ([]byte, error) {
	if items == nil {
		items = []models.QueueItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal queue: %w", err)
	}
	return data, nil
}

// DecodeQueue parses a queue written by EncodeQueue. Empty input is an
// empty queue.
func DecodeQueue(data []byte) ([]models.QueueItem, error) {
	if len(data) == 0 {
		return []models.QueueItem{}, nil
	}
	var items []models.QueueItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse queue: %w", err)
	}
	return items, nil
}

// MemoryStore keeps the queue in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items []models.QueueItem
	saves int
}

// NewMemoryStore creates a MemoryStore seeded with items.
func NewMemoryStore(items ...models.QueueItem) *MemoryStore {
	return &MemoryStore{items: slices.Clone(items)}
}

// Load returns a copy of the stored queue.
func (s *MemoryStore) Load(ctx context.Context) ([]models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

// Save replaces the stored queue.
func (s *MemoryStore) Save(ctx context.Context, items []models.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

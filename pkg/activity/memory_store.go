package activity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage using in-memory storage.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStorage creates an empty in-memory activity storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Insert(ctx context.Context, entry *Entry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries = append(ms.entries, *entry)
	return nil
}

func (ms *MemoryStorage) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var matched []Entry
	// Stored oldest first; walk backwards for newest-first output.
	for i := len(ms.entries) - 1; i >= 0; i-- {
		if userID == uuid.Nil || ms.entries[i].UserID == userID {
			matched = append(matched, ms.entries[i])
		}
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

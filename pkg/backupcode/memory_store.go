package backupcode

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
)

type storedCode struct {
	hash      string
	used      bool
	createdAt time.Time
	usedAt    time.Time
}

// MemoryStorage implements Storage using in-memory storage. The mutex makes
// Consume a single atomic check-and-mark, matching the conditional-update
// guarantee of the Postgres implementation.
type MemoryStorage struct {
	mu    sync.Mutex
	codes map[uuid.UUID][]*storedCode
}

// NewMemoryStorage creates an empty in-memory backup-code storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		codes: make(map[uuid.UUID][]*storedCode),
	}
}

func (ms *MemoryStorage) ReplaceBatch(ctx context.Context, userID uuid.UUID, hashes []string, createdAt time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	batch := make([]*storedCode, 0, len(hashes))
	for _, hash := range hashes {
		batch = append(batch, &storedCode{hash: hash, createdAt: createdAt})
	}
	ms.codes[userID] = batch
	return nil
}

func (ms *MemoryStorage) Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, code := range ms.codes[userID] {
		if code.used {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(code.hash), []byte(hash)) == 1 {
			code.used = true
			code.usedAt = usedAt
			return true, nil
		}
	}
	return false, nil
}

func (ms *MemoryStorage) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	count := 0
	for _, code := range ms.codes[userID] {
		if !code.used {
			count++
		}
	}
	return count, nil
}

func (ms *MemoryStorage) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.codes, userID)
	return nil
}

package credential

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory storage. Intended for tests
// and single-process deployments; counter primitives run under the store
// mutex, giving the same at-most-once semantics the Postgres store provides
// with conditional updates.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[uuid.UUID]*Credential
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creds: make(map[uuid.UUID]*Credential),
	}
}

func (ms *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	cred, ok := ms.creds[userID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *cred
	return &clone, nil
}

func (ms *MemoryStore) Save(ctx context.Context, cred *Credential) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	clone := *cred
	if existing, ok := ms.creds[cred.UserID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	ms.creds[cred.UserID] = &clone
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, userID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.creds, userID)
	return nil
}

func (ms *MemoryStore) RecordFailure(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cred, ok := ms.creds[userID]
	if !ok {
		return 0, ErrNotFound
	}
	cred.FailedAttempts++
	cred.LastFailedAt = at
	cred.UpdatedAt = at
	return cred.FailedAttempts, nil
}

func (ms *MemoryStore) RecordSuccess(ctx context.Context, userID uuid.UUID, code string, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cred, ok := ms.creds[userID]
	if !ok {
		return ErrNotFound
	}
	cred.FailedAttempts = 0
	cred.LastFailedAt = time.Time{}
	if code != "" {
		cred.LastUsedCode = code
		cred.LastUsedAt = at
	}
	cred.UpdatedAt = at
	return nil
}

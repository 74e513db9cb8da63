package trusteddevice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type pairKey struct {
	userID uuid.UUID
	fp     string
}

// MemoryStorage implements Storage using in-memory storage, for tests and
// single-process deployments. The map key enforces (user, fingerprint)
// uniqueness the way the Postgres store does with a unique constraint.
type MemoryStorage struct {
	mu      sync.RWMutex
	devices map[pairKey]*Device
}

// NewMemoryStorage creates an empty in-memory trust-grant storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		devices: make(map[pairKey]*Device),
	}
}

func (ms *MemoryStorage) Find(ctx context.Context, userID uuid.UUID, fp string) (*Device, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	device, ok := ms.devices[pairKey{userID, fp}]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *device
	return &clone, nil
}

func (ms *MemoryStorage) Replace(ctx context.Context, device *Device) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	clone := *device
	ms.devices[pairKey{device.UserID, device.Fingerprint}] = &clone
	return nil
}

func (ms *MemoryStorage) Touch(ctx context.Context, userID uuid.UUID, fp string, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	device, ok := ms.devices[pairKey{userID, fp}]
	if !ok {
		return ErrNotFound
	}
	device.LastSeenAt = at
	return nil
}

func (ms *MemoryStorage) Delete(ctx context.Context, userID uuid.UUID, fp string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.devices, pairKey{userID, fp})
	return nil
}

func (ms *MemoryStorage) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key := range ms.devices {
		if key.userID == userID {
			delete(ms.devices, key)
		}
	}
	return nil
}

func (ms *MemoryStorage) ListByUser(ctx context.Context, userID uuid.UUID) ([]Device, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var devices []Device
	for key, device := range ms.devices {
		if key.userID == userID {
			devices = append(devices, *device)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.After(devices[j].CreatedAt)
	})
	return devices, nil
}

func (ms *MemoryStorage) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for key, device := range ms.devices {
		if device.TrustedUntil.Before(before) {
			delete(ms.devices, key)
			removed++
		}
	}
	return removed, nil
}

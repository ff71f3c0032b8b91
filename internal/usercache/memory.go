package usercache

import (
	"context"
	"sync"
	"time"

	"gtrac-gateway/internal/model"
)

type memoryEntry struct {
	user      model.DashboardUser
	expiresAt time.Time
}

// Memory is a process-local Cache. Expired entries are dropped lazily and
// swept when the table grows past sweepThreshold.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

const sweepThreshold = 1024

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) (model.DashboardUser, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return model.DashboardUser{}, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return model.DashboardUser{}, false, nil
	}
	return entry.user, true, nil
}

func (m *Memory) Set(_ context.Context, key string, user model.DashboardUser, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{user: user, expiresAt: m.now().Add(ttl)}
	if len(m.entries) > sweepThreshold {
		m.sweepLocked()
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

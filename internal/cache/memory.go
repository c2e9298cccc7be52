package cache

import (
	"context"
	"sync"
	"time"

	"github.com/valyala/fastrand"
)

var _ Cache = (*Memory)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache with a hard entry bound. When full
// it evicts a random entry, which is cheap and good enough for a
// memoization workload with no strong recency pattern.
type Memory struct {
	mtx        sync.RWMutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry

	// test seam
	now func() time.Time
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    map[string]entry{},
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mtx.RLock()
	e, ok := m.entries[key]
	m.mtx.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mtx.Lock()
		delete(m.entries, key)
		m.mtx.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mtx.Lock()
	delete(m.entries, key)
	m.mtx.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.entries)
}

// evictLocked drops expired entries first and falls back to removing a
// random survivor when everything is still fresh.
func (m *Memory) evictLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	if len(m.entries) < m.maxEntries {
		return
	}

	victim := int(fastrand.Uint32n(uint32(len(m.entries))))
	i := 0
	for k := range m.entries {
		if i == victim {
			delete(m.entries, k)
			return
		}
		i++
	}
}

package session

import (
	"context"
	"sync"
	"time"

	"cv-generator/internal/shared/telemetry"
)

// Store keeps form state per session id.
type Store interface {
	Get(id string) *State
	Delete(id string)
}

type entry struct {
	state    *State
	lastSeen time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*entry
	now    func() time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*entry), now: time.Now}
}

// Get returns the state for id, creating an empty one on first use.
func (m *MemoryStore) Get(id string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.states[id]
	if !ok {
		e = &entry{state: NewState()}
		m.states[id] = e
	}
	e.lastSeen = m.now()
	return e.state
}

// Delete forgets the state for id.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
}

// Len reports how many sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// Evict drops sessions idle for longer than maxIdle and returns how many were removed.
func (m *MemoryStore) Evict(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, e := range m.states {
		if e.lastSeen.Before(cutoff) {
			delete(m.states, id)
			removed++
		}
	}
	return removed
}

// RunEviction calls Evict(maxIdle) on every tick until ctx is done.
func (m *MemoryStore) RunEviction(ctx context.Context, every, maxIdle time.Duration) error {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if removed := m.Evict(maxIdle); removed > 0 {
			telemetry.Info("session.evicted", map[string]any{"removed": removed, "remaining": m.Len()})
		}
	}
}

var _ Store = (*MemoryStore)(nil)

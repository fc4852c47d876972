package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps a hit log per key in process memory.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy: p,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	live := prune(m.hits[key], now.Add(-m.policy.Window))
	if len(live) >= m.policy.Max {
		m.hits[key] = live
		return false, nil
	}
	m.hits[key] = append(live, now)
	return true, nil
}

// Sweep drops keys whose hits have all left the window.
func (m *MemoryLimiter) Sweep() {
	cutoff := m.now().Add(-m.policy.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, hits := range m.hits {
		live := prune(hits, cutoff)
		if len(live) == 0 {
			delete(m.hits, key)
			continue
		}
		m.hits[key] = live
	}
}

func (m *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryLimiter) keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// prune keeps hits strictly after cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

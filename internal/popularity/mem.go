package popularity

import (
	"context"
	"sync"
	"time"

	"airport-api/internal/airport"
)

// MemRanking：进程内热度排行，与 Redis 实现语义一致
// 约束：只维护一个截止时间，读写时惰性判断是否到期，到期即整体清空
type MemRanking struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	scores   map[string]int64
	deadline time.Time
}

func NewMemRanking(ttl time.Duration) *MemRanking { return NewMemRankingWithClock(ttl, time.Now) }

// NewMemRankingWithClock：可注入时钟，便于验证过期窗口
func NewMemRankingWithClock(ttl time.Duration, now func() time.Time) *MemRanking {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemRanking{ttl: ttl, now: now, scores: make(map[string]int64)}
}

func (m *MemRanking) Increment(_ context.Context, identifier string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, airport.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.expireLocked(now)
	m.scores[identifier] += amount
	m.deadline = now.Add(m.ttl)
	return m.scores[identifier], nil
}

func (m *MemRanking) TopK(_ context.Context, k int) ([]airport.RankEntry, error) {
	if k <= 0 {
		return []airport.RankEntry{}, nil
	}
	m.mu.Lock()
	m.expireLocked(m.now())
	out := make([]airport.RankEntry, 0, len(m.scores))
	for id, s := range m.scores {
		out = append(out, airport.RankEntry{Identifier: id, Score: s})
	}
	m.mu.Unlock()
	sortRanking(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *MemRanking) Remove(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scores, identifier)
	if len(m.scores) == 0 {
		m.deadline = time.Time{}
	}
	return nil
}

func (m *MemRanking) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = make(map[string]int64)
	m.deadline = time.Time{}
	return nil
}

func (m *MemRanking) expireLocked(now time.Time) {
	if !m.deadline.IsZero() && !now.Before(m.deadline) {
		m.scores = make(map[string]int64)
		m.deadline = time.Time{}
	}
}

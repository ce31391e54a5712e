package repo

import (
	"context"
	"sort"
	"sync"
	"time"
)

type user struct {
	id                     int
	login, email, password string
}

// MemoryRepository keeps everything in process. It serves tests and runs
// without DATABASE_URL.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]user
	usage  []UsageRecord
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]user)}
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrUserExists
	}
	m.nextID++
	m.users[login] = user{id: m.nextID, login: login, email: email, password: password}
	return m.nextID, nil
}

func (m *MemoryRepository) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", ErrNotFound
	}
	return u.id, u.password, nil
}

func (m *MemoryRepository) RecordUsage(_ context.Context, rec UsageRecord) error {
	m.mu.Lock()
	m.usage = append(m.usage, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) UsageSince(_ context.Context, userID int, since time.Time) ([]UsageStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byEndpoint := map[string]*UsageStat{}
	total := map[string]time.Duration{}
	for _, rec := range m.usage {
		if rec.UserID != userID || rec.At.Before(since) {
			continue
		}
		s, ok := byEndpoint[rec.Endpoint]
		if !ok {
			s = &UsageStat{Endpoint: rec.Endpoint}
			byEndpoint[rec.Endpoint] = s
		}
		s.Count++
		if rec.Status >= 400 {
			s.Errors++
		}
		if rec.Choked {
			s.Choked++
		}
		total[rec.Endpoint] += rec.Duration
	}

	stats := make([]UsageStat, 0, len(byEndpoint))
	for ep, s := range byEndpoint {
		s.AvgDurationMs = float64(total[ep]) / float64(time.Millisecond) / float64(s.Count)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Endpoint < stats[j].Endpoint })
	return stats, nil
}

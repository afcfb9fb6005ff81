package aggregate

import (
	"context"
	"sync"

	"pairpulse/internal/model"
)

// StatsStore persists cumulative pair statistics.
type StatsStore interface {
	GetPairStats(ctx context.Context, pairID string) (model.PairStats, bool, error)
	PutPairStats(ctx context.Context, stats model.PairStats) error
}

// MemoryStore keeps pair statistics in process memory. Useful for tests and
// for one-shot aggregation runs that only print results.
type MemoryStore struct {
	mu    sync.RWMutex
	pairs map[string]model.PairStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: make(map[string]model.PairStats)}
}

func (s *MemoryStore) GetPairStats(_ context.Context, pairID string) (model.PairStats, bool, error) {
	s.mu.RLock()
	stats, ok := s.pairs[pairID]
	s.mu.RUnlock()
	return stats, ok, nil
}

func (s *MemoryStore) PutPairStats(_ context.Context, stats model.PairStats) error {
	s.mu.Lock()
	s.pairs[stats.PairID] = stats
	s.mu.Unlock()
	return nil
}

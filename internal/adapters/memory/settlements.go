package memory

import (
	"context"
	"sync"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// SettlementStore keeps settlements in memory, keyed by pay key.
type SettlementStore struct {
	mu          sync.RWMutex
	settlements map[string]domain.Settlement
}

// NewSettlementStore creates an empty settlement store.
func NewSettlementStore() *SettlementStore {
	return &SettlementStore{settlements: make(map[string]domain.Settlement)}
}

func (s *SettlementStore) SaveSettlement(ctx context.Context, settlement *domain.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settlements[settlement.PayKey] = *settlement
	return nil
}

func (s *SettlementStore) GetSettlement(ctx context.Context, payKey string) (*domain.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settlement, ok := s.settlements[payKey]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	return &settlement, nil
}

// NopPublisher discards settlement events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSettled(ctx context.Context, settlement *domain.Settlement) error {
	return nil
}

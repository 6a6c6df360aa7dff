// Package memory provides in-memory implementations of the store ports.
// Used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// TransactionRepository keeps ledger records in memory.
type TransactionRepository struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
}

// NewTransactionRepository creates an empty repository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Save appends a copy of the record.
func (r *TransactionRepository) Save(ctx context.Context, record *domain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, *record)
	return nil
}

// ListByPayKey returns the records for a pay key, newest first.
func (r *TransactionRepository) ListByPayKey(ctx context.Context, payKey string) ([]domain.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.TransactionRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].PayKey == payKey {
			out = append(out, r.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// All returns every record in insertion order.
func (r *TransactionRepository) All() []domain.TransactionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.TransactionRecord, len(r.records))
	copy(out, r.records)
	return out
}

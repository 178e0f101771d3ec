package memory

import (
	"context"
	"sync"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// InMemoryLedgerRepository is an append-only in-memory payment ledger
type InMemoryLedgerRepository struct {
	mu      sync.RWMutex
	entries []*models.LedgerEntry
}

// NewInMemoryLedgerRepository creates a new in-memory ledger repository
func NewInMemoryLedgerRepository() *InMemoryLedgerRepository {
	return &InMemoryLedgerRepository{
		entries: make([]*models.LedgerEntry, 0),
	}
}

var _ ports.LedgerRepository = (*InMemoryLedgerRepository)(nil)

func (r *InMemoryLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *InMemoryLedgerRepository) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.LedgerEntry, 0)
	count := 0
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.CustomerID != customerID {
			continue
		}
		if count >= offset {
			if len(result) >= limit {
				break
			}
			e := *entry
			result = append(result, &e)
		}
		count++
	}
	return result, nil
}

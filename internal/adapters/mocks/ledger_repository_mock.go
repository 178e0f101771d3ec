package mocks

import (
	"context"
	"sync"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

var _ ports.LedgerRepository = (*MockLedgerRepository)(nil)

// MockLedgerRepository records entries in a slice for inspection
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries []*models.LedgerEntry

	// Function overrides for testing
	RecordFunc         func(ctx context.Context, entry *models.LedgerEntry) error
	ListByCustomerFunc func(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error)
}

// NewMockLedgerRepository creates a new mock ledger repository
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockLedgerRepository) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID, offset, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].CustomerID == customerID {
			cp := *m.entries[i]
			matched = append(matched, &cp)
		}
	}

	if offset >= len(matched) {
		return []*models.LedgerEntry{}, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

// Entries returns every recorded entry in insertion order
func (m *MockLedgerRepository) Entries() []*models.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

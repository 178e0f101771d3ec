package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

type accountRecord struct {
	balance models.Money
	history []models.CallRecord
}

// InMemoryAccountRepository keeps accounts in a map. Stored state is
// copied in and out so callers never share it.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]accountRecord
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[string]accountRecord),
	}
}

var _ ports.AccountRepository = (*InMemoryAccountRepository)(nil)

func (r *InMemoryAccountRepository) Create(ctx context.Context, account *models.CustomerAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.CustomerID]; exists {
		return fmt.Errorf("account %s: %w", account.CustomerID, ports.ErrAlreadyExists)
	}

	r.accounts[account.CustomerID] = toRecord(account)
	return nil
}

func (r *InMemoryAccountRepository) Get(ctx context.Context, customerID string) (*models.CustomerAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.accounts[customerID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", customerID, ports.ErrNotFound)
	}
	return models.RestoreCustomerAccount(customerID, rec.balance, rec.history), nil
}

func (r *InMemoryAccountRepository) Save(ctx context.Context, account *models.CustomerAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.CustomerID]; !exists {
		return fmt.Errorf("account %s: %w", account.CustomerID, ports.ErrNotFound)
	}

	r.accounts[account.CustomerID] = toRecord(account)
	return nil
}

func (r *InMemoryAccountRepository) List(ctx context.Context, offset, limit int) ([]*models.CustomerAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*models.CustomerAccount, 0)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(result) >= limit {
			break
		}
		rec := r.accounts[id]
		result = append(result, models.RestoreCustomerAccount(id, rec.balance, rec.history))
	}
	return result, nil
}

func toRecord(account *models.CustomerAccount) accountRecord {
	return accountRecord{
		balance: account.Balance(),
		history: account.CallHistory(),
	}
}

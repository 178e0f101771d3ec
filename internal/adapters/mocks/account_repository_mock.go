package mocks

import (
	"context"
	"sync"

	"github.com/hsdfat8/telbill/internal/adapters/memory"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

var _ ports.AccountRepository = (*MockAccountRepository)(nil)

// MockAccountRepository is an in-memory AccountRepository whose methods can be overridden per test
type MockAccountRepository struct {
	store *memory.InMemoryAccountRepository

	mu        sync.Mutex
	saveCalls int

	// Function overrides for testing
	CreateFunc func(ctx context.Context, account *models.CustomerAccount) error
	GetFunc    func(ctx context.Context, customerID string) (*models.CustomerAccount, error)
	SaveFunc   func(ctx context.Context, account *models.CustomerAccount) error
	ListFunc   func(ctx context.Context, offset, limit int) ([]*models.CustomerAccount, error)
}

// NewMockAccountRepository creates a new mock account repository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{store: memory.NewInMemoryAccountRepository()}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.CustomerAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return m.store.Create(ctx, account)
}

func (m *MockAccountRepository) Get(ctx context.Context, customerID string) (*models.CustomerAccount, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, customerID)
	}
	return m.store.Get(ctx, customerID)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *models.CustomerAccount) error {
	m.mu.Lock()
	m.saveCalls++
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	return m.store.Save(ctx, account)
}

func (m *MockAccountRepository) List(ctx context.Context, offset, limit int) ([]*models.CustomerAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, offset, limit)
	}
	return m.store.List(ctx, offset, limit)
}

// SaveCalls returns how many times Save was called
func (m *MockAccountRepository) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

package ports

import (
	"context"
	"errors"

	"github.com/hsdfat8/telbill/internal/domain/models"
)

// Repository errors shared by every adapter
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// AccountRepository persists customer accounts.
// This is a port owned by the domain layer
type AccountRepository interface {
	// Create stores a new account; ErrAlreadyExists if the id is taken
	Create(ctx context.Context, account *models.CustomerAccount) error

	// Get loads an account by customer id; ErrNotFound if missing
	Get(ctx context.Context, customerID string) (*models.CustomerAccount, error)

	// Save replaces the stored balance and call history of an existing account
	Save(ctx context.Context, account *models.CustomerAccount) error

	// List returns accounts ordered by customer id with pagination
	List(ctx context.Context, offset, limit int) ([]*models.CustomerAccount, error)
}

// LedgerRepository records accepted payments
type LedgerRepository interface {
	// Record appends an entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// ListByCustomer returns entries for a customer, newest first
	ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error)
}

// DeviceRepository holds managed network devices. Stored devices never
// leave the repository; all access goes through Update.
type DeviceRepository interface {
	Add(ctx context.Context, id string, device models.NetworkDevice) error
	// Update runs fn on the stored device while holding exclusive access
	Update(ctx context.Context, id string, fn func(models.NetworkDevice) string) (string, error)
}

// CatalogRepository lists phone catalog entries
type CatalogRepository interface {
	ListPhones(ctx context.Context) ([]models.Mobile, error)
}

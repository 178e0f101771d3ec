package postgres

import (
	"context"
	"fmt"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// ledgerRepository implements the LedgerRepository interface using PostgreSQL
type ledgerRepository struct {
	db dbExecutor
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(db dbExecutor) ports.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Record appends an accepted payment
func (r *ledgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO payment_ledger (
			receipt_id, customer_id, kind, amount, confirmation, balance_after, recorded_at
		) VALUES (
			:receipt_id, :customer_id, :kind, :amount, :confirmation, :balance_after, :recorded_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("receipt %s: %w", entry.ReceiptID, ports.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// ListByCustomer retrieves ledger entries for a customer, newest first
func (r *ledgerRepository) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT receipt_id, customer_id, kind, amount, confirmation, balance_after, recorded_at
		FROM payment_ledger
		WHERE customer_id = $1
		ORDER BY recorded_at DESC, receipt_id DESC
		LIMIT $2 OFFSET $3
	`

	entries := []*models.LedgerEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, customerID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

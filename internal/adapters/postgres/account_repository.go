package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// unique_violation
const pqUniqueViolation = "23505"

// accountRow maps the accounts table
type accountRow struct {
	CustomerID string       `db:"customer_id"`
	Balance    models.Money `db:"balance"`
}

// callRow maps call_records when loading several accounts at once
type callRow struct {
	CustomerID string       `db:"customer_id"`
	Seq        int          `db:"seq"`
	Duration   int          `db:"duration"`
	Cost       models.Money `db:"cost"`
}

// accountRepository implements the AccountRepository interface using PostgreSQL.
// Call history lives in call_records keyed by (customer_id, seq).
type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *sqlx.DB) ports.AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts the account and any call history it already carries
func (r *accountRepository) Create(ctx context.Context, account *models.CustomerAccount) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO accounts (customer_id, balance) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, query, account.CustomerID, account.Balance()); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.CustomerID, ports.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	if err := insertCalls(ctx, tx, account.CustomerID, account.CallHistory(), 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get loads an account with its call history in order
func (r *accountRepository) Get(ctx context.Context, customerID string) (*models.CustomerAccount, error) {
	query := `SELECT customer_id, balance FROM accounts WHERE customer_id = $1`

	var row accountRow
	if err := r.db.GetContext(ctx, &row, query, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", customerID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	history, err := loadCalls(ctx, r.db, customerID)
	if err != nil {
		return nil, err
	}

	return models.RestoreCustomerAccount(row.CustomerID, row.Balance, history), nil
}

// Save updates the balance and appends call records not yet stored.
// History is append-only, so existing (customer_id, seq) rows are left alone.
func (r *accountRepository) Save(ctx context.Context, account *models.CustomerAccount) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE customer_id = $2`
	result, err := tx.ExecContext(ctx, query, account.Balance(), account.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s: %w", account.CustomerID, ports.ErrNotFound)
	}

	var stored int
	countQuery := `SELECT COUNT(*) FROM call_records WHERE customer_id = $1`
	if err := tx.GetContext(ctx, &stored, countQuery, account.CustomerID); err != nil {
		return fmt.Errorf("failed to count call records: %w", err)
	}

	history := account.CallHistory()
	if stored < len(history) {
		if err := insertCalls(ctx, tx, account.CustomerID, history[stored:], stored); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List retrieves accounts ordered by customer id with pagination
func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*models.CustomerAccount, error) {
	query := `
		SELECT customer_id, balance
		FROM accounts
		ORDER BY customer_id
		LIMIT $1 OFFSET $2
	`

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(rows) == 0 {
		return []*models.CustomerAccount{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.CustomerID
	}

	callsQuery := `
		SELECT customer_id, seq, duration, cost
		FROM call_records
		WHERE customer_id = ANY($1)
		ORDER BY customer_id, seq
	`
	var calls []callRow
	if err := r.db.SelectContext(ctx, &calls, callsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list call records: %w", err)
	}

	byCustomer := make(map[string][]models.CallRecord, len(rows))
	for _, c := range calls {
		byCustomer[c.CustomerID] = append(byCustomer[c.CustomerID], models.CallRecord{Duration: c.Duration, Cost: c.Cost})
	}

	accounts := make([]*models.CustomerAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, models.RestoreCustomerAccount(row.CustomerID, row.Balance, byCustomer[row.CustomerID]))
	}
	return accounts, nil
}

func loadCalls(ctx context.Context, db dbExecutor, customerID string) ([]models.CallRecord, error) {
	query := `
		SELECT duration, cost
		FROM call_records
		WHERE customer_id = $1
		ORDER BY seq
	`

	var history []models.CallRecord
	if err := db.SelectContext(ctx, &history, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to load call records: %w", err)
	}
	return history, nil
}

// insertCalls stores calls with sequence numbers starting at firstSeq
func insertCalls(ctx context.Context, db dbExecutor, customerID string, calls []models.CallRecord, firstSeq int) error {
	query := `
		INSERT INTO call_records (customer_id, seq, duration, cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id, seq) DO NOTHING
	`
	for i, c := range calls {
		if _, err := db.ExecContext(ctx, query, customerID, firstSeq+i, c.Duration, c.Cost); err != nil {
			return fmt.Errorf("failed to insert call record: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

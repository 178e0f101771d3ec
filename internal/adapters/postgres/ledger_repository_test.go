package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecord_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewLedgerRepository(db)
	entry := &models.LedgerEntry{
		ReceiptID:    "6f1c1f0e-3c0f-4d55-9a59-1a2f1c7d9e01",
		CustomerID:   "TEL12345",
		Kind:         models.PaymentKindCreditCard,
		Amount:       5000,
		Confirmation: "Processed $50.00 via Credit Card ending in 1111",
		BalanceAfter: 15000,
		RecordedAt:   time.Now(),
	}

	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(entry.ReceiptID, "TEL12345", "credit_card", int64(5000), entry.Confirmation, int64(15000), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), entry)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRecord_DuplicateReceipt(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectExec("INSERT INTO payment_ledger").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Record(context.Background(), &models.LedgerEntry{ReceiptID: "r1"})

	assert.True(t, errors.Is(err, ports.ErrAlreadyExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerListByCustomer(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewLedgerRepository(db)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"receipt_id", "customer_id", "kind", "amount", "confirmation", "balance_after", "recorded_at",
	}).
		AddRow("r2", "TEL12345", "mobile_wallet", int64(3000), "Processed $30.00 via Mobile Wallet WALL...", int64(18000), newer).
		AddRow("r1", "TEL12345", "direct", int64(5000), "Payment of $50.00 received. New balance: $150.00", int64(15000), older)

	mock.ExpectQuery("SELECT (.+) FROM payment_ledger WHERE customer_id = (.+) ORDER BY recorded_at DESC, receipt_id DESC LIMIT (.+) OFFSET (.+)").
		WithArgs("TEL12345", 10, 0).
		WillReturnRows(rows)

	entries, err := repo.ListByCustomer(context.Background(), "TEL12345", 0, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r2", entries[0].ReceiptID)
	assert.Equal(t, models.PaymentKindMobileWallet, entries[0].Kind)
	assert.Equal(t, models.Money(3000), entries[0].Amount)
	assert.Equal(t, models.Money(15000), entries[1].BalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerListByCustomer_DatabaseError(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM payment_ledger").
		WillReturnError(errors.New("timeout"))

	entries, err := repo.ListByCustomer(context.Background(), "TEL12345", 0, 10)

	assert.Error(t, err)
	assert.Nil(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

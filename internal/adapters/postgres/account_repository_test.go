package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func TestNewAccountRepository(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)
	assert.NotNil(t, repo)
}

func TestAccountCreate_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)
	account := models.RestoreCustomerAccount("TEL12345", 10000, []models.CallRecord{{Duration: 5, Cost: 250}})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("TEL12345", int64(10000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO call_records").
		WithArgs("TEL12345", int64(0), int64(5), int64(250)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), account)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreate_Duplicate(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("TEL12345", int64(0)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), models.NewCustomerAccount("TEL12345", 0))

	assert.True(t, errors.Is(err, ports.ErrAlreadyExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountGet_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT customer_id, balance FROM accounts WHERE customer_id = (.+)").
		WithArgs("TEL12345").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "balance"}).AddRow("TEL12345", int64(15000)))
	mock.ExpectQuery("SELECT duration, cost FROM call_records WHERE customer_id = (.+) ORDER BY seq").
		WithArgs("TEL12345").
		WillReturnRows(sqlmock.NewRows([]string{"duration", "cost"}).
			AddRow(5, int64(250)).
			AddRow(10, int64(500)))

	account, err := repo.Get(context.Background(), "TEL12345")

	require.NoError(t, err)
	assert.Equal(t, "TEL12345", account.CustomerID)
	assert.Equal(t, models.Money(15000), account.Balance())
	assert.Equal(t, []models.CallRecord{{Duration: 5, Cost: 250}, {Duration: 10, Cost: 500}}, account.CallHistory())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountGet_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT customer_id, balance FROM accounts").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	account, err := repo.Get(context.Background(), "missing")

	assert.Nil(t, account)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountGet_DatabaseError(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT customer_id, balance FROM accounts").
		WithArgs("TEL12345").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "TEL12345")

	assert.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountSave_AppendsNewCalls(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)
	account := models.RestoreCustomerAccount("TEL12345", 15000, []models.CallRecord{
		{Duration: 5, Cost: 250},
		{Duration: 10, Cost: 500},
	})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs(int64(15000), "TEL12345").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM call_records").
		WithArgs("TEL12345").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO call_records").
		WithArgs("TEL12345", int64(1), int64(10), int64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), account)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountSave_NoNewCalls(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs(int64(500), "TEL12345").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM call_records").
		WithArgs("TEL12345").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), models.NewCustomerAccount("TEL12345", 500))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountSave_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), models.NewCustomerAccount("missing", 0))

	assert.True(t, errors.Is(err, ports.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountList_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT customer_id, balance FROM accounts ORDER BY customer_id LIMIT (.+) OFFSET (.+)").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "balance"}).
			AddRow("A", int64(100)).
			AddRow("B", int64(200)))
	mock.ExpectQuery("SELECT (.+) FROM call_records WHERE customer_id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "seq", "duration", "cost"}).
			AddRow("B", 0, 3, int64(90)).
			AddRow("B", 1, 4, int64(120)))

	accounts, err := repo.List(context.Background(), 0, 10)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "A", accounts[0].CustomerID)
	assert.Empty(t, accounts[0].CallHistory())
	assert.Equal(t, models.Money(200), accounts[1].Balance())
	assert.Equal(t, []models.CallRecord{{Duration: 3, Cost: 90}, {Duration: 4, Cost: 120}}, accounts[1].CallHistory())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountList_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT customer_id, balance FROM accounts").
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "balance"}))

	accounts, err := repo.List(context.Background(), 20, 10)

	assert.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

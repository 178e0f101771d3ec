package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hsdfat8/telbill/internal/config"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_FreshDatabase(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations").
		WithArgs(initialSchema).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(initialSchema, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := NewMigrator(db).Migrate(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_AlreadyApplied(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations").
		WithArgs(initialSchema).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := NewMigrator(db).Migrate(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMigrationStatus(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	appliedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT migration_name, description, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"migration_name", "description", "applied_at"}).
			AddRow(initialSchema, "Applied billing schema from schema.sql", appliedAt))

	records, err := NewMigrator(db).GetMigrationStatus(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, initialSchema, records[0].MigrationName)
	assert.Equal(t, appliedAt, records[0].AppliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifySchema(t *testing.T) {
	t.Run("All tables present", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()

		for _, table := range requiredTables {
			mock.ExpectQuery("SELECT EXISTS").
				WithArgs(table).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		}

		assert.NoError(t, NewMigrator(db).VerifySchema(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing table", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("accounts").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := NewMigrator(db).VerifySchema(context.Background())
		assert.ErrorContains(t, err, "table accounts does not exist")
	})
}

func TestSchemaEmbedded(t *testing.T) {
	schema, err := schemaFS.ReadFile("schema.sql")
	require.NoError(t, err)

	for _, table := range []string{"accounts", "call_records", "payment_ledger"} {
		assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestPostgresAdapter(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	cfg := config.DatabaseConfig{Host: "db", Port: 5432, Database: "telbill", MaxOpenConns: 25}
	adapter := NewPostgresAdapterWithDB(db, cfg)

	assert.Equal(t, ports.DatabaseTypePostgreSQL, adapter.GetType())
	assert.NotNil(t, adapter.AccountRepository())
	assert.NotNil(t, adapter.LedgerRepository())

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	assert.NoError(t, adapter.HealthCheck(context.Background()))

	stats := adapter.GetConnectionStats()
	assert.Equal(t, "db:5432/telbill", stats.ConnectionString)
	assert.Equal(t, 25, stats.MaxConnections)
	assert.True(t, stats.Healthy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdapter_NotConnected(t *testing.T) {
	adapter := NewPostgresAdapter(config.DatabaseConfig{})

	assert.Error(t, adapter.Ping(context.Background()))
	assert.NoError(t, adapter.Disconnect(context.Background()))
	assert.False(t, adapter.GetConnectionStats().Healthy)
}

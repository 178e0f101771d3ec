package postgres

import (
	"context"
	"fmt"

	"github.com/hsdfat8/telbill/internal/config"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

var _ ports.DatabaseAdapter = (*PostgresAdapter)(nil)

// PostgresAdapter owns the PostgreSQL connection pool and the repositories built on it
type PostgresAdapter struct {
	db          *sqlx.DB
	config      config.DatabaseConfig
	accountRepo ports.AccountRepository
	ledgerRepo  ports.LedgerRepository
}

// NewPostgresAdapter creates a new PostgreSQL database adapter
func NewPostgresAdapter(cfg config.DatabaseConfig) *PostgresAdapter {
	return &PostgresAdapter{config: cfg}
}

// NewPostgresAdapterWithDB wraps an existing connection
func NewPostgresAdapterWithDB(db *sqlx.DB, cfg config.DatabaseConfig) *PostgresAdapter {
	a := &PostgresAdapter{config: cfg}
	a.attach(db)
	return a
}

// Connect establishes a connection to the PostgreSQL database
func (a *PostgresAdapter) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", a.config.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(a.config.MaxOpenConns)
	db.SetMaxIdleConns(a.config.MaxIdleConns)
	db.SetConnMaxLifetime(a.config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(a.config.ConnMaxIdleTime)

	a.attach(db)
	return nil
}

func (a *PostgresAdapter) attach(db *sqlx.DB) {
	a.db = db
	a.accountRepo = NewAccountRepository(db)
	a.ledgerRepo = NewLedgerRepository(db)
}

// Disconnect closes the database connection
func (a *PostgresAdapter) Disconnect(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database not connected")
	}
	return a.db.PingContext(ctx)
}

// GetType returns the database type
func (a *PostgresAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypePostgreSQL
}

// DB exposes the pool for the migrator
func (a *PostgresAdapter) DB() *sqlx.DB {
	return a.db
}

// AccountRepository returns the account repository
func (a *PostgresAdapter) AccountRepository() ports.AccountRepository {
	return a.accountRepo
}

// LedgerRepository returns the ledger repository
func (a *PostgresAdapter) LedgerRepository() ports.LedgerRepository {
	return a.ledgerRepo
}

// HealthCheck performs a health check on the database
func (a *PostgresAdapter) HealthCheck(ctx context.Context) error {
	if err := a.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := a.db.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}
	return nil
}

// GetConnectionStats returns database connection statistics
func (a *PostgresAdapter) GetConnectionStats() ports.ConnectionStats {
	stats := ports.ConnectionStats{
		MaxConnections:   a.config.MaxOpenConns,
		DatabaseType:     string(ports.DatabaseTypePostgreSQL),
		ConnectionString: fmt.Sprintf("%s:%d/%s", a.config.Host, a.config.Port, a.config.Database),
	}
	if a.db == nil {
		return stats
	}

	dbStats := a.db.Stats()
	stats.OpenConnections = dbStats.OpenConnections
	stats.IdleConnections = dbStats.Idle
	stats.Healthy = a.Ping(context.Background()) == nil
	return stats
}

package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/hsdfat8/telbill/internal/adapters/memory"
	"github.com/hsdfat8/telbill/internal/adapters/mongodb"
	"github.com/hsdfat8/telbill/internal/adapters/postgres"
	"github.com/hsdfat8/telbill/internal/config"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// Repositories is the storage wiring handed to the billing service
type Repositories struct {
	Accounts ports.AccountRepository
	Ledger   ports.LedgerRepository
	Devices  ports.DeviceRepository
	Catalog  ports.CatalogRepository

	// Adapters are the connected database backends, if any
	Adapters []ports.DatabaseAdapter
}

// HealthCheck checks every connected backend
func (r *Repositories) HealthCheck(ctx context.Context) error {
	for _, a := range r.Adapters {
		if err := a.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", a.GetType(), err)
		}
	}
	return nil
}

// Close disconnects every backend
func (r *Repositories) Close(ctx context.Context) error {
	var errs []error
	for _, a := range r.Adapters {
		if err := a.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.GetType(), err))
		}
	}
	return errors.Join(errs...)
}

// DatabaseAdapterFactory creates database adapters based on configuration
type DatabaseAdapterFactory struct{}

// NewDatabaseAdapterFactory creates a new database adapter factory
func NewDatabaseAdapterFactory() *DatabaseAdapterFactory {
	return &DatabaseAdapterFactory{}
}

// CreateAdapter creates an unconnected adapter of the given type
func (f *DatabaseAdapterFactory) CreateAdapter(cfg *config.Config, dbType ports.DatabaseType) (ports.DatabaseAdapter, error) {
	switch dbType {
	case ports.DatabaseTypePostgreSQL:
		return postgres.NewPostgresAdapter(cfg.Database), nil
	case ports.DatabaseTypeMongoDB:
		return mongodb.NewMongoDBAdapter(cfg.MongoDB), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// CreateAndConnectAdapter creates and connects a database adapter
func (f *DatabaseAdapterFactory) CreateAndConnectAdapter(ctx context.Context, cfg *config.Config, dbType ports.DatabaseType) (ports.DatabaseAdapter, error) {
	adapter, err := f.CreateAdapter(cfg, dbType)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	if err := adapter.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return adapter, nil
}

// BuildRepositories connects the backends selected in cfg.Storage and
// returns the repositories. Devices and the phone catalog are always in memory.
func (f *DatabaseAdapterFactory) BuildRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	repos := &Repositories{
		Devices: memory.NewInMemoryDeviceRepository(),
		Catalog: memory.NewInMemoryCatalog(memory.PhoneSampleData),
	}

	var pg *postgres.PostgresAdapter
	if cfg.UsesPostgres() {
		adapter, err := f.CreateAndConnectAdapter(ctx, cfg, ports.DatabaseTypePostgreSQL)
		if err != nil {
			return nil, err
		}
		pg = adapter.(*postgres.PostgresAdapter)
		repos.Adapters = append(repos.Adapters, pg)
	}

	switch cfg.Storage.Accounts {
	case config.BackendPostgres:
		repos.Accounts = pg.AccountRepository()
	default:
		repos.Accounts = memory.NewInMemoryAccountRepository()
	}

	switch cfg.Storage.Ledger {
	case config.BackendPostgres:
		repos.Ledger = pg.LedgerRepository()
	case config.BackendMongoDB:
		adapter, err := f.CreateAndConnectAdapter(ctx, cfg, ports.DatabaseTypeMongoDB)
		if err != nil {
			_ = repos.Close(ctx)
			return nil, err
		}
		repos.Ledger = adapter.(*mongodb.MongoDBAdapter).LedgerRepository()
		repos.Adapters = append(repos.Adapters, adapter)
	default:
		repos.Ledger = memory.NewInMemoryLedgerRepository()
	}

	return repos, nil
}

// ValidateConfig validates the settings of every backend cfg selects
func (f *DatabaseAdapterFactory) ValidateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.UsesPostgres() {
		if err := f.validatePostgresConfig(cfg.Database); err != nil {
			return err
		}
	}
	if cfg.Storage.Ledger == config.BackendMongoDB {
		if err := f.validateMongoDBConfig(cfg.MongoDB); err != nil {
			return err
		}
	}
	return nil
}

func (f *DatabaseAdapterFactory) validatePostgresConfig(db config.DatabaseConfig) error {
	if db.Host == "" {
		return fmt.Errorf("postgres host is required")
	}

	if db.Port <= 0 || db.Port > 65535 {
		return fmt.Errorf("postgres port must be between 1 and 65535")
	}

	if db.User == "" {
		return fmt.Errorf("postgres user is required")
	}

	if db.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}

	if db.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be greater than 0")
	}

	if db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}

	return nil
}

func (f *DatabaseAdapterFactory) validateMongoDBConfig(m config.MongoDBConfig) error {
	if m.URI == "" {
		return fmt.Errorf("mongodb URI is required")
	}

	if m.Database == "" {
		return fmt.Errorf("mongodb database name is required")
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// an explicit path that does not exist is a read error, not "not found"
		t.Fatalf("expected error for missing explicit config file, got %+v", cfg)
	}

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.EnableH2C)
	assert.Equal(t, BackendMemory, cfg.Storage.Accounts)
	assert.Equal(t, BackendMemory, cfg.Storage.Ledger)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telbill.yaml")
	content := `
server:
  port: 9000
storage:
  accounts: postgres
  ledger: mongodb
database:
  host: db.internal
mongodb:
  uri: mongodb://mongo:27017
  database: billing
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Storage.Accounts)
	assert.Equal(t, BackendMongoDB, cfg.Storage.Ledger)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoDB.URI)
	assert.Equal(t, "billing", cfg.MongoDB.Database)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.UsesPostgres())
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  accounts: redis\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.accounts")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Accounts: BackendMemory, Ledger: BackendMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "tls cert without key", mutate: func(c *Config) { c.Server.TLSCertFile = "server.crt" }, wantErr: "tlsKeyFile"},
		{name: "mongodb accounts", mutate: func(c *Config) { c.Storage.Accounts = BackendMongoDB }, wantErr: "storage.accounts"},
		{name: "unknown ledger", mutate: func(c *Config) { c.Storage.Ledger = "kafka" }, wantErr: "storage.ledger"},
		{name: "mongodb ledger without uri", mutate: func(c *Config) { c.Storage.Ledger = BackendMongoDB }, wantErr: "mongodb.uri"},
		{
			name: "mongodb ledger with uri",
			mutate: func(c *Config) {
				c.Storage.Ledger = BackendMongoDB
				c.MongoDB.URI = "mongodb://localhost:27017"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", d.DSN())
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELBILL_TEST_LOADENV=yes\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TELBILL_TEST_LOADENV") })

	LoadEnv(path)
	assert.Equal(t, "yes", os.Getenv("TELBILL_TEST_LOADENV"))

	// missing files are ignored
	LoadEnv(filepath.Join(t.TempDir(), "nope.env"))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELBILL_SERVER_PORT", "7070")
	t.Setenv("TELBILL_STORAGE_LEDGER", "postgres")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Storage.Ledger)
}

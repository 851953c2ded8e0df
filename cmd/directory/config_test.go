package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gartstein/bawsala/internal/directory/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults fill missing keys",
			body: "HTTP_PORT: 9090\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.HTTPPort)
				assert.Equal(t, 50051, cfg.GRPCPort)
				assert.Equal(t, sourceFile, cfg.CatalogSource)
				assert.Equal(t, 300*time.Millisecond, cfg.debounce())
				assert.NotNil(t, cfg.limiter())
			},
		},
		{
			name: "database source",
			body: "CATALOG_SOURCE: db\nDB_DRIVER: postgres\nDB_HOST: pg\nDB_PORT: 5432\nKAFKA_BROKERS: [k1:9092, k2:9092]\nSEARCH_RATE_LIMIT: 0\n",
			check: func(t *testing.T, cfg *Config) {
				d := cfg.database()
				assert.Equal(t, db.DriverPostgres, d.Driver)
				assert.Equal(t, "pg", d.Host)
				assert.Equal(t, 5432, d.Port)
				assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
				assert.Nil(t, cfg.limiter())
			},
		},
		{
			name:    "unknown source",
			body:    "CATALOG_SOURCE: s3\n",
			wantErr: "unknown CATALOG_SOURCE",
		},
		{
			name:    "negative debounce",
			body:    "DEBOUNCE_MS: -1\n",
			wantErr: "DEBOUNCE_MS",
		},
		{
			name:    "not yaml",
			body:    "GRPC_PORT: [",
			wantErr: "parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, tt.body))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig_EnvSecretAndMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := loadConfig(writeConfig(t, "JWT_SECRET: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)

	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenSource_Database(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := defaultConfig()
	cfg.CatalogSource = sourceDB
	cfg.DBPath = filepath.Join(t.TempDir(), "catalog.db")

	source, closeFn, err := openSource(&cfg, logger)
	require.NoError(t, err)
	defer closeFn()

	_, ok := source.(*db.Repository)
	assert.True(t, ok)
}

func TestNewProducer_WithoutBrokers(t *testing.T) {
	p, closeFn, err := newProducer(&Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, p)
}

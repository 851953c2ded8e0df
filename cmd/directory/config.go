package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/gartstein/bawsala/internal/directory/controller"
	"github.com/gartstein/bawsala/internal/directory/db"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const (
	sourceFile = "file"
	sourceDB   = "db"
)

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	CatalogSource string `yaml:"CATALOG_SOURCE"`
	CatalogPath   string `yaml:"CATALOG_PATH"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	DBPath     string `yaml:"DB_PATH"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	ControlTopic string   `yaml:"CONTROL_TOPIC"`
	GroupID      string   `yaml:"GROUP_ID"`

	JWTSecret       string   `yaml:"JWT_SECRET"`
	SearchRateLimit float64  `yaml:"SEARCH_RATE_LIMIT"`
	SearchBurst     int      `yaml:"SEARCH_BURST"`
	AllowedOrigins  []string `yaml:"ALLOWED_ORIGINS"`
	DebounceMS      int      `yaml:"DEBOUNCE_MS"`
}

func defaultConfig() Config {
	return Config{
		GRPCPort:        50051,
		HTTPPort:        8080,
		CatalogSource:   sourceFile,
		CatalogPath:     "data/companies.json",
		DBDriver:        db.DriverSQLite,
		DBPath:          "bawsala.db",
		DBSSLMode:       "disable",
		Topic:           "catalog-events",
		ControlTopic:    "catalog-control",
		GroupID:         "bawsala-directory",
		SearchRateLimit: 20,
		SearchBurst:     40,
		DebounceMS:      int(controller.DefaultDebounce / time.Millisecond),
	}
}

// loadConfig reads path over the defaults. An empty path yields the
// defaults alone. JWT_SECRET in the environment overrides the file.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.CatalogSource {
	case sourceFile:
		if c.CatalogPath == "" {
			return fmt.Errorf("CATALOG_PATH is required for the file source")
		}
	case sourceDB:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("DEBOUNCE_MS must not be negative")
	}
	return nil
}

// database maps the DB_* keys onto a repository config.
func (c *Config) database() *db.Config {
	return &db.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

func (c *Config) debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// limiter returns nil when rate limiting is disabled.
func (c *Config) limiter() *rate.Limiter {
	if c.SearchRateLimit <= 0 {
		return nil
	}
	burst := c.SearchBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.SearchRateLimit), burst)
}

// openSource returns the configured catalog source and a func releasing it.
func openSource(cfg *Config, logger *zap.Logger) (catalog.Source, func(), error) {
	if cfg.CatalogSource == sourceFile {
		logger.Info("Using file catalog", zap.String("path", cfg.CatalogPath))
		return catalog.NewFileSource(cfg.CatalogPath), func() {}, nil
	}
	repo, err := db.NewRepository(cfg.database())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Using database catalog", zap.String("driver", cfg.DBDriver))
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}, nil
}

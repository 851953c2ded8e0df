package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/gartstein/bawsala/internal/directory/db/models"
	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository stores raw company documents and serves them as a catalog
// source.
type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file for the sqlite driver.
	Path string
}

func dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(cfg.Path), nil
	}
	return nil, fmt.Errorf("%w: unknown database driver %q", e.ErrInvalidInput, cfg.Driver)
}

func NewRepository(cfg *Config) (*Repository, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.CompanyRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Records returns every stored document in import order.
func (r *Repository) Records(ctx context.Context) ([]json.RawMessage, error) {
	var rows []models.CompanyRecord
	result := r.db.WithContext(ctx).Order("position asc").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrCatalogUnavailable, result.Error)
	}
	out := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		out[i] = json.RawMessage(row.Payload)
	}
	return out, nil
}

// ReplaceRecords swaps the stored catalog for records in one transaction.
// Documents are stored verbatim; only well-formed JSON is required.
func (r *Repository) ReplaceRecords(ctx context.Context, records []json.RawMessage) (int, error) {
	rows := make([]models.CompanyRecord, len(records))
	for i, raw := range records {
		if !json.Valid(raw) {
			return 0, fmt.Errorf("%w: record %d is not valid JSON", e.ErrInvalidInput, i)
		}
		rows[i] = models.CompanyRecord{
			ID:        uuid.New(),
			CompanyID: catalog.RecordID(raw),
			Position:  i,
			Payload:   string(raw),
		}
	}

	err := r.WithTransaction(ctx, func(repo *Repository) error {
		if err := repo.db.Unscoped().Where("1 = 1").Delete(&models.CompanyRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := repo.db.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert records: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Count returns the number of stored documents.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.CompanyRecord{}).Count(&count)
	return count, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ catalog.Source = (*Repository)(nil)

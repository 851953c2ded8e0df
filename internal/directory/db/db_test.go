package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/gartstein/bawsala/internal/directory/db/models"
	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.CompanyRecord{})
	require.NoError(t, err, "failed to migrate test database")

	repo := &Repository{db: db}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestReplaceRecords_PreservesOrderAndPayload(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	in := []json.RawMessage{
		raw(`{"id":"b","name_en":"Beta"}`),
		raw(`{"id":"a","name_en":"Alpha"}`),
		raw(`{"name_en":"no id"}`),
	}
	n, err := repo.ReplaceRecords(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out, err := repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range in {
		assert.JSONEq(t, string(in[i]), string(out[i]), "record %d", i)
	}

	var row models.CompanyRecord
	require.NoError(t, repo.db.First(&row, "position = ?", 1).Error)
	assert.Equal(t, "a", row.CompanyID)
}

func TestReplaceRecords_Replaces(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.ReplaceRecords(ctx, []json.RawMessage{raw(`{"id":"1"}`), raw(`{"id":"2"}`)})
	require.NoError(t, err)

	_, err = repo.ReplaceRecords(ctx, []json.RawMessage{raw(`{"id":"3"}`)})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.ReplaceRecords(ctx, nil)
	require.NoError(t, err)
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReplaceRecords_InvalidJSONRollsBack(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.ReplaceRecords(ctx, []json.RawMessage{raw(`{"id":"keep"}`)})
	require.NoError(t, err)

	_, err = repo.ReplaceRecords(ctx, []json.RawMessage{raw(`{"id":"x"}`), raw(`{broken`)})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	out, err := repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", catalog.RecordID(out[0]))
}

func TestRecords_DuplicatesKeptForValidation(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.ReplaceRecords(ctx, []json.RawMessage{raw(`{"id":"dup"}`), raw(`{"id":"dup"}`)})
	require.NoError(t, err)

	out, err := repo.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, out, 2, "duplicate ids are rejected at load time, not on write")
}

func TestRecords_Unavailable(t *testing.T) {
	repo := SetupTestDB(t)
	require.NoError(t, repo.Close())

	_, err := repo.Records(context.Background())
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	_, err := NewRepository(&Config{Driver: "oracle"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestNewRepository_SQLite(t *testing.T) {
	repo, err := NewRepository(&Config{Driver: DriverSQLite, Path: t.TempDir() + "/catalog.db"})
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

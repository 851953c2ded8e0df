package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	e "github.com/gartstein/bawsala/internal/directory/errors"
)

// Source yields the raw records a catalog is built from.
type Source interface {
	Records(ctx context.Context) ([]json.RawMessage, error)
}

// FileSource reads a JSON array of company records from disk.
type FileSource struct {
	Path string
}

// NewFileSource returns a Source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Records reads and splits the file. A missing or unparseable file is
// reported as ErrCatalogUnavailable.
func (s *FileSource) Records(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrCatalogUnavailable, err)
	}
	return ParseRecords(data)
}

// ParseRecords splits a JSON array into its raw elements.
func ParseRecords(data []byte) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: catalog is not a JSON array: %v", e.ErrCatalogUnavailable, err)
	}
	return records, nil
}

// StaticSource serves a fixed set of records.
type StaticSource []json.RawMessage

// Records returns the fixed records.
func (s StaticSource) Records(_ context.Context) ([]json.RawMessage, error) {
	return s, nil
}

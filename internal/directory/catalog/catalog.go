// Package catalog builds the immutable, validated list of companies from raw
// JSON records. Invalid records are excluded whole and reported one by one.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/models"
)

// Rejection describes one record excluded from the catalog.
type Rejection struct {
	// Index is the record's position in the input.
	Index int `json:"index"`
	// ID is the record's id when one could be read.
	ID string `json:"id,omitempty"`
	// Reason is the failed check.
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	id := r.ID
	if id == "" {
		id = "UNKNOWN"
	}
	return fmt.Sprintf("record %d (%s): %s", r.Index, id, r.Reason)
}

// Catalog is the loaded set of companies. It is never mutated after Build.
type Catalog struct {
	companies  []models.Company
	byID       map[string]int
	rejections []Rejection
	taxonomy   *Taxonomy
}

// Build validates every record and keeps the ones that pass. A record whose
// id was already accepted is rejected as a duplicate.
func Build(records []json.RawMessage, v *Validator) *Catalog {
	if v == nil {
		v = NewValidator(nil)
	}
	c := &Catalog{
		companies: make([]models.Company, 0, len(records)),
		byID:      make(map[string]int, len(records)),
		taxonomy:  v.Taxonomy(),
	}
	for i, raw := range records {
		company, err := v.Validate(raw)
		if err != nil {
			c.rejections = append(c.rejections, Rejection{
				Index:  i,
				ID:     RecordID(raw),
				Reason: strings.TrimPrefix(err.Error(), e.ErrInvalidRecord.Error()+": "),
			})
			continue
		}
		if _, dup := c.byID[company.ID]; dup {
			c.rejections = append(c.rejections, Rejection{
				Index:  i,
				ID:     company.ID,
				Reason: fmt.Sprintf("duplicate id %q", company.ID),
			})
			continue
		}
		c.byID[company.ID] = len(c.companies)
		c.companies = append(c.companies, company)
	}
	return c
}

// Companies returns the validated records in input order. The slice is
// shared and must be treated as read-only.
func (c *Catalog) Companies() []models.Company {
	return c.companies
}

// Len returns the number of accepted companies.
func (c *Catalog) Len() int {
	return len(c.companies)
}

// Empty reports whether no company was accepted.
func (c *Catalog) Empty() bool {
	return len(c.companies) == 0
}

// Get returns the company with the given id.
func (c *Catalog) Get(id string) (models.Company, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Company{}, fmt.Errorf("%w: company %q", e.ErrNotFound, id)
	}
	return c.companies[i], nil
}

// Rejections returns every excluded record.
func (c *Catalog) Rejections() []Rejection {
	return c.rejections
}

// Taxonomy returns the allow-lists the catalog was validated against.
func (c *Catalog) Taxonomy() *Taxonomy {
	return c.taxonomy
}

// JSON returns the validated catalog as pretty-printed JSON.
func (c *Catalog) JSON() ([]byte, error) {
	return models.MarshalIndent(c.companies)
}

// RecordID reads a record's id without validating it. It returns "" when the
// record has no string id.
func RecordID(raw json.RawMessage) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	if s, ok := probe.ID.(string); ok {
		return s
	}
	return ""
}

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecord = `{
	"id": "1",
	"name_ar": "شركة",
	"name_en": "Company",
	"description_ar": "وصف",
	"website": "https://example.com",
	"type": "private",
	"industry": ["Fintech", "التقنية المالية"],
	"subindustry": ["Payments", "المدفوعات"],
	"tags": ["fintech", "ksa"],
	"founding_year": 2015,
	"headquarters": "Saudi Arabia",
	"links": {"careers": "https://example.com/jobs", "github": "https://github.com/example"}
}`

// withField returns validRecord with key replaced by value (raw JSON), or
// removed when value is empty.
func withField(t *testing.T, key, value string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(validRecord), &m))
	if value == "" {
		delete(m, key)
	} else {
		m[key] = json.RawMessage(value)
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}

func TestValidate_ValidRecord(t *testing.T) {
	v := NewValidator(nil)

	company, err := v.Validate(json.RawMessage(validRecord))
	require.NoError(t, err)

	assert.Equal(t, "1", company.ID)
	assert.Equal(t, models.Private, company.Type)
	assert.Equal(t, "Fintech", company.Industry.Key())
	assert.Equal(t, "المدفوعات", company.Subindustry.Label(models.Arabic))
	assert.Equal(t, []string{"fintech", "ksa"}, company.Tags)
	year, ok := company.Year()
	assert.True(t, ok)
	assert.Equal(t, 2015, year)
	assert.Equal(t, "https://example.com/jobs", company.CareersURL())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing id", key: "id"},
		{name: "missing name_en", key: "name_en"},
		{name: "null tags", key: "tags", value: `null`},
		{name: "numeric id", key: "id", value: `7`},
		{name: "empty name", key: "name_ar", value: `"  "`},
		{name: "industry not allowed", key: "industry", value: `["Fintech", "wrong"]`},
		{name: "industry not a pair", key: "industry", value: `["Fintech"]`},
		{name: "subindustry unknown", key: "subindustry", value: `["Nope", "لا"]`},
		{name: "website scheme", key: "website", value: `"ftp://example.com"`},
		{name: "website relative", key: "website", value: `"example.com"`},
		{name: "unknown type", key: "type", value: `"public"`},
		{name: "tags not array", key: "tags", value: `"fintech"`},
		{name: "non-string tag", key: "tags", value: `["fintech", 3]`},
		{name: "empty tag", key: "tags", value: `["fintech", ""]`},
		{name: "fractional year", key: "founding_year", value: `2015.5`},
		{name: "string year", key: "founding_year", value: `"2015"`},
		{name: "year too old", key: "founding_year", value: `999`},
		{name: "year in future", key: "founding_year", value: `2999`},
		{name: "headquarters not allowed", key: "headquarters", value: `"Atlantis"`},
		{name: "links not object", key: "links", value: `["https://x.com"]`},
		{name: "links bad url", key: "links", value: `{"twitter": "x.com/foo"}`},
		{name: "links unknown platform", key: "links", value: `{"myspace": "https://myspace.com"}`},
		{name: "description_en not string", key: "description_en", value: `5`},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(withField(t, tt.key, tt.value))
			require.Error(t, err)
			assert.ErrorIs(t, err, e.ErrInvalidRecord)
		})
	}
}

func TestValidate_OptionalFieldsMayBeAbsentOrNull(t *testing.T) {
	v := NewValidator(nil)
	for _, key := range []string{"founding_year", "headquarters", "links", "description_en"} {
		_, err := v.Validate(withField(t, key, ""))
		assert.NoError(t, err, key)
		_, err = v.Validate(withField(t, key, "null"))
		assert.NoError(t, err, key)
	}
}

func TestValidate_HeadquartersAcceptsArabicName(t *testing.T) {
	v := NewValidator(nil)
	_, err := v.Validate(withField(t, "headquarters", `"مصر"`))
	assert.NoError(t, err)
}

func TestValidate_YearUsesClock(t *testing.T) {
	v := NewValidator(nil)
	v.WithClock(func() time.Time { return time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC) })

	_, err := v.Validate(json.RawMessage(validRecord))
	assert.ErrorIs(t, err, e.ErrInvalidRecord, "2015 is in the future relative to 2010")
}

func TestValidate_NotAnObject(t *testing.T) {
	v := NewValidator(nil)
	for _, raw := range []string{`null`, `[]`, `"x"`, `{`} {
		_, err := v.Validate(json.RawMessage(raw))
		assert.ErrorIs(t, err, e.ErrInvalidRecord, raw)
	}
}

func TestBuild_ExcludesInvalidAndDuplicates(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(validRecord),
		withField(t, "type", `"public"`),
		json.RawMessage(validRecord),
		withField(t, "id", `"2"`),
	}

	c := Build(records, nil)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, "1", c.Companies()[0].ID)
	assert.Equal(t, "2", c.Companies()[1].ID)

	rejections := c.Rejections()
	require.Len(t, rejections, 2)
	assert.Equal(t, 1, rejections[0].Index)
	assert.Equal(t, "1", rejections[0].ID)
	assert.Contains(t, rejections[0].Reason, "invalid type")
	assert.Equal(t, 2, rejections[1].Index)
	assert.Contains(t, rejections[1].Reason, "duplicate id")
}

func TestBuild_IDsAreUnique(t *testing.T) {
	records := []json.RawMessage{
		withField(t, "id", `"a"`),
		withField(t, "id", `"b"`),
		withField(t, "id", `"a"`),
		withField(t, "id", `"c"`),
	}
	c := Build(records, nil)

	seen := map[string]bool{}
	for _, company := range c.Companies() {
		assert.False(t, seen[company.ID], "duplicate id %s", company.ID)
		seen[company.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestCatalog_Get(t *testing.T) {
	c := Build([]json.RawMessage{json.RawMessage(validRecord)}, nil)

	company, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Company", company.NameEn)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestCatalog_JSONIsPrettyAndValidatedOnly(t *testing.T) {
	c := Build([]json.RawMessage{json.RawMessage(validRecord), withField(t, "website", `"nope"`)}, nil)

	data, err := c.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"1\"")

	var decoded []models.Company
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 1)
}

func TestCatalog_EmptyJSON(t *testing.T) {
	c := Build(nil, nil)
	assert.True(t, c.Empty())

	data, err := c.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "companies.json")
		require.NoError(t, os.WriteFile(path, []byte("["+validRecord+"]"), 0o600))

		records, err := NewFileSource(path).Records(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "missing.json")).Records(ctx)
		assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
	})

	t.Run("not an array", func(t *testing.T) {
		path := filepath.Join(dir, "object.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"id": "1"}`), 0o600))

		_, err := NewFileSource(path).Records(ctx)
		assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
	})
}

func TestParseTaxonomy(t *testing.T) {
	tax, err := ParseTaxonomy([]byte("industries:\n  - [\"A\", \"أ\"]\nsubindustries: []\nheadquarters: []\n"))
	require.NoError(t, err)
	assert.True(t, tax.AllowedIndustry(models.Category{"A", "أ"}))
	assert.False(t, tax.AllowedIndustry(models.Category{"A", "ب"}))

	_, err = ParseTaxonomy([]byte("industries:\n  - [\"A\"]\n"))
	assert.Error(t, err)

	_, err = ParseTaxonomy([]byte("industries:\n  - [\"A\", \"أ\"]\n  - [\"A\", \"ب\"]\n"))
	assert.Error(t, err)
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Len(t, tax.Industries, 17)
	assert.Len(t, tax.Subindustries, 50)
	assert.Len(t, tax.Headquarters, 22)
	assert.True(t, tax.AllowedHeadquarters("Jordan"))
}

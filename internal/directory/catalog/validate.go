package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/models"
)

const minFoundingYear = 1000

var requiredFields = []string{
	"id", "name_ar", "name_en", "website", "type",
	"description_ar", "industry", "subindustry", "tags",
}

// Validator checks raw records against the schema and the taxonomy.
type Validator struct {
	taxonomy *Taxonomy
	now      func() time.Time
}

// NewValidator constructs a Validator. A nil taxonomy selects the embedded one.
func NewValidator(taxonomy *Taxonomy) *Validator {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Validator{taxonomy: taxonomy, now: time.Now}
}

// WithClock sets the clock that bounds founding years.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Taxonomy returns the allow-lists the validator checks against.
func (v *Validator) Taxonomy() *Taxonomy {
	return v.taxonomy
}

// Validate accepts one raw JSON record and returns the typed Company, or an
// error wrapping ErrInvalidRecord that names the first failed check.
// A record is either accepted whole or rejected whole.
func (v *Validator) Validate(raw json.RawMessage) (models.Company, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return models.Company{}, invalid("record is not a JSON object: %v", err)
	}
	if fields == nil {
		return models.Company{}, invalid("record is null")
	}

	for _, name := range requiredFields {
		if fields[name] == nil {
			return models.Company{}, invalid("missing required field %q", name)
		}
	}
	for _, name := range []string{"id", "name_ar", "name_en", "description_ar", "website"} {
		s, ok := fields[name].(string)
		if !ok {
			return models.Company{}, invalid("field %q must be a string", name)
		}
		if strings.TrimSpace(s) == "" {
			return models.Company{}, invalid("field %q must not be empty", name)
		}
	}
	for _, name := range []string{"description_en", "logo_path", "logo_url", "headquarters"} {
		if val, present := fields[name]; present && val != nil {
			if _, ok := val.(string); !ok {
				return models.Company{}, invalid("field %q must be a string", name)
			}
		}
	}

	industry, err := pair(fields["industry"])
	if err != nil || !v.taxonomy.AllowedIndustry(industry) {
		return models.Company{}, invalid("invalid industry %s", compact(fields["industry"]))
	}
	subindustry, err := pair(fields["subindustry"])
	if err != nil || !v.taxonomy.AllowedSubindustry(subindustry) {
		return models.Company{}, invalid("invalid subindustry %s", compact(fields["subindustry"]))
	}

	if !httpURL(fields["website"].(string)) {
		return models.Company{}, invalid("invalid website %q", fields["website"])
	}
	if t, ok := fields["type"].(string); !ok || !models.CompanyType(t).Valid() {
		return models.Company{}, invalid("invalid type %s", compact(fields["type"]))
	}

	tags, ok := fields["tags"].([]any)
	if !ok {
		return models.Company{}, invalid("tags must be an array")
	}
	for i, tag := range tags {
		s, ok := tag.(string)
		if !ok || s == "" {
			return models.Company{}, invalid("tags[%d] must be a non-empty string", i)
		}
	}

	if val, present := fields["founding_year"]; present && val != nil {
		if err := v.checkYear(val); err != nil {
			return models.Company{}, err
		}
	}
	if hq, ok := fields["headquarters"].(string); ok && !v.taxonomy.AllowedHeadquarters(hq) {
		return models.Company{}, invalid("invalid headquarters %q", hq)
	}
	if val, present := fields["links"]; present && val != nil {
		if err := checkLinks(val); err != nil {
			return models.Company{}, err
		}
	}

	var company models.Company
	if err := json.Unmarshal(raw, &company); err != nil {
		return models.Company{}, invalid("failed to decode record: %v", err)
	}
	return company, nil
}

func (v *Validator) checkYear(val any) error {
	n, ok := val.(json.Number)
	if !ok {
		return invalid("founding_year must be an integer")
	}
	year, err := n.Int64()
	if err != nil {
		return invalid("founding_year must be an integer, got %s", n)
	}
	if year < minFoundingYear || year > int64(v.now().Year()) {
		return invalid("founding_year %d out of range", year)
	}
	return nil
}

func checkLinks(val any) error {
	links, ok := val.(map[string]any)
	if !ok {
		return invalid("links must be an object")
	}
	for key, u := range links {
		if !models.KnownPlatform(models.Platform(key)) {
			return invalid("unknown link platform %q", key)
		}
		s, ok := u.(string)
		if !ok || !httpURL(s) {
			return invalid("invalid URL in links.%s", key)
		}
	}
	return nil
}

func pair(val any) (models.Category, error) {
	arr, ok := val.([]any)
	if !ok || len(arr) != 2 {
		return models.Category{}, fmt.Errorf("not a pair")
	}
	en, ok1 := arr[0].(string)
	ar, ok2 := arr[1].(string)
	if !ok1 || !ok2 {
		return models.Category{}, fmt.Errorf("not a string pair")
	}
	return models.Category{en, ar}, nil
}

func httpURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func compact(val any) string {
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return string(b)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e.ErrInvalidRecord, fmt.Sprintf(format, args...))
}

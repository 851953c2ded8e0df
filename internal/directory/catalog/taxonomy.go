package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gartstein/bawsala/internal/directory/models"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Taxonomy holds the master allow-lists of localized pairs.
type Taxonomy struct {
	Industries    []models.Category
	Subindustries []models.Category
	Headquarters  []models.Category
}

type taxonomyFile struct {
	Industries    [][]string `yaml:"industries"`
	Subindustries [][]string `yaml:"subindustries"`
	Headquarters  [][]string `yaml:"headquarters"`
}

// ParseTaxonomy decodes a YAML taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	industries, err := toPairs("industries", f.Industries)
	if err != nil {
		return nil, err
	}
	subindustries, err := toPairs("subindustries", f.Subindustries)
	if err != nil {
		return nil, err
	}
	headquarters, err := toPairs("headquarters", f.Headquarters)
	if err != nil {
		return nil, err
	}
	return &Taxonomy{
		Industries:    industries,
		Subindustries: subindustries,
		Headquarters:  headquarters,
	}, nil
}

func toPairs(section string, rows [][]string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if len(row) != 2 || row[0] == "" || row[1] == "" {
			return nil, fmt.Errorf("taxonomy %s[%d]: expected a non-empty [english, arabic] pair", section, i)
		}
		if seen[row[0]] {
			return nil, fmt.Errorf("taxonomy %s[%d]: duplicate key %q", section, i, row[0])
		}
		seen[row[0]] = true
		out = append(out, models.Category{row[0], row[1]})
	}
	return out, nil
}

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomy)
})

// DefaultTaxonomy returns the embedded allow-lists.
func DefaultTaxonomy() *Taxonomy {
	t, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

// AllowedIndustry reports whether the exact pair is in the industry list.
func (t *Taxonomy) AllowedIndustry(c models.Category) bool {
	return containsPair(t.Industries, c)
}

// AllowedSubindustry reports whether the exact pair is in the subindustry list.
func (t *Taxonomy) AllowedSubindustry(c models.Category) bool {
	return containsPair(t.Subindustries, c)
}

// AllowedHeadquarters reports whether s matches either name of a listed location.
func (t *Taxonomy) AllowedHeadquarters(s string) bool {
	for _, hq := range t.Headquarters {
		if hq[0] == s || hq[1] == s {
			return true
		}
	}
	return false
}

func containsPair(list []models.Category, c models.Category) bool {
	for _, allowed := range list {
		if allowed == c {
			return true
		}
	}
	return false
}

// Package sorting orders the visible companies by localized name or by
// founding year. Sorting is stable and always returns a new slice.
package sorting

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gartstein/bawsala/internal/directory/models"
	"golang.org/x/text/collate"
)

// Key selects what to order by.
type Key string

const (
	ByName         Key = "name"
	ByFoundingYear Key = "founding_year"
)

// Direction selects ascending or descending order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order pairs a sort key with a direction.
type Order struct {
	Key       Key       `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultOrder sorts by name, ascending.
var DefaultOrder = Order{Key: ByName, Direction: Asc}

// ParseOrder reads a key and a direction; empty values select the defaults.
func ParseOrder(key, dir string) (Order, error) {
	o := DefaultOrder
	switch Key(strings.ToLower(strings.TrimSpace(key))) {
	case "":
	case ByName:
		o.Key = ByName
	case ByFoundingYear, "year":
		o.Key = ByFoundingYear
	default:
		return Order{}, fmt.Errorf("unknown sort key %q", key)
	}
	switch Direction(strings.ToLower(strings.TrimSpace(dir))) {
	case "":
	case Asc:
		o.Direction = Asc
	case Desc:
		o.Direction = Desc
	default:
		return Order{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return o, nil
}

// NewCollator returns a collator for the locale. Collators keep internal
// buffers, so each sort gets its own.
func NewCollator(locale models.Locale) *collate.Collator {
	return collate.New(locale.Tag(), collate.IgnoreCase)
}

// year returns the founding year, with unknown years sorting as the oldest.
func year(c *models.Company) int {
	if y, ok := c.Year(); ok {
		return y
	}
	return math.MinInt
}

// Sort returns the companies ordered by o. Equal keys keep their input
// order in both directions.
func Sort(companies []models.Company, o Order, locale models.Locale) []models.Company {
	out := make([]models.Company, len(companies))
	copy(out, companies)

	var cmp func(a, b *models.Company) int
	switch o.Key {
	case ByFoundingYear:
		cmp = func(a, b *models.Company) int {
			ya, yb := year(a), year(b)
			switch {
			case ya < yb:
				return -1
			case ya > yb:
				return 1
			}
			return 0
		}
	default:
		col := NewCollator(locale)
		cmp = func(a, b *models.Company) int {
			return col.CompareString(a.Name(locale), b.Name(locale))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if o.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

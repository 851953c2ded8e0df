// Package models defines the core domain models of the directory: the
// Company record, its localized category pairs, and the derived values
// (tag counts, category options, search result sets) recomputed on every
// interaction.
package models

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// CompanyType represents the ownership type of a company.
type CompanyType string

const (
	Private    CompanyType = "private"
	Government CompanyType = "government"
)

// Valid reports whether t is one of the known company types.
func (t CompanyType) Valid() bool {
	return t == Private || t == Government
}

// Category is a localized (English, Arabic) pair. The English label is the
// stable key used for filtering and grouping.
type Category [2]string

// Key returns the stable, locale-independent identifier.
func (c Category) Key() string {
	return c[0]
}

// Label returns the display label for the given locale.
func (c Category) Label(locale Locale) string {
	if locale == Arabic {
		return c[1]
	}
	return c[0]
}

// Platform names a link target a company may publish.
type Platform string

const (
	Careers   Platform = "careers"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	GitHub    Platform = "github"
	Blog      Platform = "blog"
)

// Platforms lists every known link key, in display order.
var Platforms = []Platform{Careers, Twitter, LinkedIn, Facebook, Instagram, GitHub, Blog}

// KnownPlatform reports whether p is one of Platforms.
func KnownPlatform(p Platform) bool {
	for _, known := range Platforms {
		if known == p {
			return true
		}
	}
	return false
}

// Link is one social or careers link of a company.
type Link struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

// Company defines the domain model for a directory entry.
// Values are immutable once loaded into a catalog.
type Company struct {
	// ID is the unique identifier for the company.
	ID string `json:"id"`
	// NameAr is the Arabic display name.
	NameAr string `json:"name_ar"`
	// NameEn is the English display name.
	NameEn string `json:"name_en"`
	// DescriptionAr is the Arabic description; always present.
	DescriptionAr string `json:"description_ar"`
	// DescriptionEn is the optional English description.
	DescriptionEn string `json:"description_en,omitempty"`
	// Website is an absolute http(s) URL.
	Website string `json:"website"`
	// Type is the ownership type.
	Type CompanyType `json:"type"`
	// Industry is the (English, Arabic) industry pair.
	Industry Category `json:"industry"`
	// Subindustry is the (English, Arabic) subindustry pair.
	Subindustry Category `json:"subindustry"`
	// Tags is an ordered list of free-form labels.
	Tags []string `json:"tags"`
	// LogoPath and LogoURL are opaque references resolved by presentation.
	LogoPath string `json:"logo_path,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
	// FoundingYear is nil when unknown.
	FoundingYear *int `json:"founding_year,omitempty"`
	// Headquarters is an allow-listed location label.
	Headquarters string `json:"headquarters,omitempty"`
	// Links maps a platform key to an absolute URL.
	Links map[Platform]string `json:"links,omitempty"`
}

// Name returns the display name for the locale.
func (c *Company) Name(locale Locale) string {
	if locale == Arabic {
		return c.NameAr
	}
	return c.NameEn
}

// Description returns the display description for the locale, falling back
// to the Arabic text when no English description exists.
func (c *Company) Description(locale Locale) string {
	if locale == English && c.DescriptionEn != "" {
		return c.DescriptionEn
	}
	return c.DescriptionAr
}

// HasTag reports whether the company carries tag.
func (c *Company) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Year returns the founding year and whether it is known.
func (c *Company) Year() (int, bool) {
	if c.FoundingYear == nil {
		return 0, false
	}
	return *c.FoundingYear, true
}

// SocialLinks returns the company's links excluding careers, in the fixed
// platform order.
func (c *Company) SocialLinks() []Link {
	var out []Link
	for _, p := range Platforms {
		if p == Careers {
			continue
		}
		if u, ok := c.Links[p]; ok && u != "" {
			out = append(out, Link{Platform: p, URL: u})
		}
	}
	return out
}

// CareersURL returns the careers link, if any.
func (c *Company) CareersURL() string {
	return c.Links[Careers]
}

const faviconService = "https://s2.googleusercontent.com/s2/favicons?domain=%s&sz=64"

// LogoSource resolves the avatar image reference: the explicit logo path,
// then the logo URL, then a favicon derived from the website host.
func (c *Company) LogoSource() string {
	switch {
	case c.LogoPath != "":
		return c.LogoPath
	case c.LogoURL != "":
		return c.LogoURL
	}
	u, err := url.Parse(c.Website)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return fmt.Sprintf(faviconService, u.Hostname())
}

// MarshalIndent renders companies the way the download action serves them.
func MarshalIndent(companies []Company) ([]byte, error) {
	if companies == nil {
		companies = []Company{}
	}
	return json.MarshalIndent(companies, "", "  ")
}

package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is one of the two supported display languages.
type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"
)

// DefaultLocale is the locale a fresh session starts in.
const DefaultLocale = Arabic

// ParseLocale accepts "ar" or "en" (case-insensitive); empty selects the default.
func ParseLocale(s string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultLocale, nil
	case Arabic:
		return Arabic, nil
	case English:
		return English, nil
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

// Dir returns the reading direction of the locale.
func (l Locale) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Toggle returns the other supported locale.
func (l Locale) Toggle() Locale {
	if l == Arabic {
		return English
	}
	return Arabic
}

// Tag returns the BCP 47 language tag used for collation.
func (l Locale) Tag() language.Tag {
	if l == Arabic {
		return language.Arabic
	}
	return language.English
}

package filter

import (
	"slices"
	"sort"
)

// Selection is the current narrowing state of the tag, industry and
// subindustry controls. It is a value: every operation returns a new
// Selection and never modifies the receiver. The free-text query is a
// separate control and is not part of Selection.
type Selection struct {
	// Tags are the active tags, kept sorted and unique.
	Tags []string `json:"tags,omitempty"`
	// Industry is the selected industry key, empty when none.
	Industry string `json:"industry,omitempty"`
	// Subindustry is the selected subindustry key, empty when none.
	Subindustry string `json:"subindustry,omitempty"`
}

// HasTag reports whether tag is active. Tags need not be sorted.
func (s Selection) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// ToggleTag activates tag, or deactivates it when already active.
func (s Selection) ToggleTag(tag string) Selection {
	if tag == "" {
		return s
	}
	tags := make([]string, 0, len(s.Tags)+1)
	found := false
	for _, t := range s.Tags {
		if t == tag {
			found = true
			continue
		}
		tags = append(tags, t)
	}
	if !found {
		tags = append(tags, tag)
	}
	return s.WithTags(tags...)
}

// WithTags replaces the active tag set.
func (s Selection) WithTags(tags ...string) Selection {
	set := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := set[t]; dup {
			continue
		}
		set[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		out = nil
	}
	s.Tags = out
	return s
}

// SelectIndustry selects an industry key (empty clears it). Any subindustry
// selection is reset, since subindustry options depend on the industry.
func (s Selection) SelectIndustry(key string) Selection {
	s.Industry = key
	s.Subindustry = ""
	return s
}

// SelectSubindustry selects a subindustry key (empty clears it).
func (s Selection) SelectSubindustry(key string) Selection {
	s.Subindustry = key
	return s
}

// ClearTags deactivates every tag.
func (s Selection) ClearTags() Selection {
	s.Tags = nil
	return s
}

// ClearAll resets tags, industry and subindustry.
func (s Selection) ClearAll() Selection {
	return Selection{}
}

// Empty reports whether no narrowing is active.
func (s Selection) Empty() bool {
	return len(s.Tags) == 0 && s.Industry == "" && s.Subindustry == ""
}

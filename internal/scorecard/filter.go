package scorecard

import (
	"fmt"
	"strings"
)

// StatusFilter restricts requirements by whether they were met.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusPresent StatusFilter = "present"
	StatusAbsent  StatusFilter = "absent"
)

var statusLabels = map[StatusFilter]string{
	StatusAll:     "Todos",
	StatusPresent: "Apenas Presentes",
	StatusAbsent:  "Apenas Ausentes",
}

// Statuses lists the filters in display order.
func Statuses() []StatusFilter {
	return []StatusFilter{StatusAll, StatusPresent, StatusAbsent}
}

// Label is the text shown next to the radio button.
func (s StatusFilter) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus accepts a code ("present") or its label ("Apenas Presentes").
// An empty string means StatusAll.
func ParseStatus(s string) (StatusFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusAll, nil
	}
	for status, label := range statusLabels {
		if strings.EqualFold(s, string(status)) || strings.EqualFold(s, label) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// Filter is the user's current selection. A nil or empty Themes slice
// selects every theme.
type Filter struct {
	Themes []string     `json:"themes,omitempty"`
	Status StatusFilter `json:"status"`
}

// Match reports whether r passes both the theme and the status filter.
func (f Filter) Match(r Requirement) bool {
	if len(f.Themes) > 0 && !contains(f.Themes, r.Theme) {
		return false
	}
	switch f.Status {
	case StatusPresent:
		return r.Present > 0
	case StatusAbsent:
		return r.Present == 0
	default:
		return true
	}
}

// Apply returns the matching requirements in their original order. The
// input slice is not modified.
func (f Filter) Apply(reqs []Requirement) []Requirement {
	out := make([]Requirement, 0, len(reqs))
	for _, r := range reqs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Selected reports whether theme is checked in the filter form.
func (f Filter) Selected(theme string) bool {
	return len(f.Themes) == 0 || contains(f.Themes, theme)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

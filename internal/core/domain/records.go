package domain

import (
	"strconv"
	"strings"
)

// Record is an active backend record offered by the entity selector.
type Record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Option is one entry of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// PeriodOption is a reporting period offered by the backend.
type PeriodOption struct {
	Key   Text `json:"key"`
	Label Text `json:"label"`
}

const fiscalYearPrefix = "fy:"

// EntityOptions builds the entity selector for a scope. Records sharing a
// trimmed, case-insensitive name collapse into the first one seen.
func EntityOptions(scope Scope, records []Record) []Option {
	opts := []Option{{Value: AllValue, Label: scope.AllLabel()}}
	if _, ok := scope.Model(); !ok {
		return opts
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		key := strings.ToLower(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		opts = append(opts, Option{Value: strconv.FormatInt(r.ID, 10), Label: name})
	}
	return opts
}

// PeriodOptions dedupes the backend list by key, prepends "All Periods" and
// selects the most recent fiscal year. The returned key is the selection,
// empty when nothing but "all" is available.
func PeriodOptions(periods []PeriodOption) ([]Option, string) {
	opts := []Option{{Value: AllValue, Label: "All Periods"}}
	seen := map[string]struct{}{AllValue: {}}

	selected := ""
	for _, p := range periods {
		key := strings.TrimSpace(p.Key.String())
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		label := p.Label.String()
		if label == "" {
			label = key
		}
		opts = append(opts, Option{Value: key, Label: label})
		if strings.HasPrefix(key, fiscalYearPrefix) {
			selected = key
		}
	}

	for i := range opts {
		opts[i].Selected = opts[i].Value == selected || (selected == "" && opts[i].Value == AllValue)
	}
	return opts, selected
}

package core

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Criteria selects a working subset of the department table.
type Criteria struct {
	// Search is matched case-insensitively against department names. Empty keeps every row.
	Search string
	// Categories is the set of labels to keep. An empty set keeps nothing.
	Categories []string
}

// Filter applies the search filter and then the category filter. The input
// is never modified.
func Filter(rows []Department, c Criteria) []Department {
	return FilterCategories(FilterSearch(rows, c.Search), c.Categories)
}

// FilterSearch keeps rows whose name contains term under Unicode case
// folding.
func FilterSearch(rows []Department, term string) []Department {
	if term == "" {
		return append([]Department(nil), rows...)
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]Department, 0, len(rows))
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		if strings.Contains(fold.String(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FilterCategories keeps rows whose category is one of labels.
func FilterCategories(rows []Department, labels []string) []Department {
	selected := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		selected[l] = struct{}{}
	}
	out := make([]Department, 0, len(rows))
	for _, r := range rows {
		if _, ok := selected[r.Category]; ok {
			out = append(out, r)
		}
	}
	return out
}

// PresentCategories lists the distinct category labels of rows in first-seen order.
func PresentCategories(rows []Department) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// SelectByName returns the rows whose name is in names. Matches are taken
// in table order and capped at limit (<= 0 means no limit), then sorted by
// amount, largest first, ties by code.
func SelectByName(rows []Department, names []string, limit int) []Department {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []Department
	for _, r := range rows {
		if limit > 0 && len(out) == limit {
			break
		}
		if _, ok := wanted[r.Name]; ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Code < out[j].Code
	})
	return out
}

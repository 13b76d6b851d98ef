package core

import (
	"sort"
	"strings"
)

// codePrefixRule maps a region/unit code prefix to a category label.
type codePrefixRule struct {
	prefix   string
	category string
}

// codePrefixRules approximates the category taxonomy from the leading
// function code. Codes outside these prefixes land in CategoryOther.
var codePrefixRules = sortedByPrefixLength([]codePrefixRule{
	{prefix: "1.", category: CategoryMandatoryService},
	{prefix: "3.", category: CategoryOptional},
	{prefix: "7.", category: CategoryTerritorial},
})

func sortedByPrefixLength(rules []codePrefixRule) []codePrefixRule {
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].prefix) > len(rules[j].prefix)
	})
	return rules
}

// Categorize assigns a category to a department code, longest prefix first.
func Categorize(code string) string {
	code = strings.TrimSpace(code)
	for _, rule := range codePrefixRules {
		if strings.HasPrefix(code, rule.prefix) {
			return rule.category
		}
	}
	return CategoryOther
}

// Normalize returns a canonical copy of rows read from an external source:
// code and name trimmed, a category assigned to rows that lack one, and the
// billions column recomputed.
func Normalize(rows []Department) []Department {
	out := make([]Department, len(rows))
	for i, r := range rows {
		r.Code = strings.TrimSpace(r.Code)
		r.Name = strings.TrimSpace(r.Name)
		if strings.TrimSpace(r.Category) == "" {
			r.Category = Categorize(r.Code)
		}
		out[i] = r
	}
	return DeriveDepartments(out)
}

// DeriveDepartments returns a copy of rows with AmountBillions recomputed.
func DeriveDepartments(rows []Department) []Department {
	out := make([]Department, len(rows))
	for i, r := range rows {
		r.AmountBillions = r.Amount.Billions()
		out[i] = r
	}
	return out
}

// DeriveCategories returns a copy of rows with AmountBillions recomputed.
func DeriveCategories(rows []CategoryRecord) []CategoryRecord {
	out := make([]CategoryRecord, len(rows))
	for i, r := range rows {
		r.AmountBillions = r.Amount.Billions()
		out[i] = r
	}
	return out
}

// DeriveTrend returns a copy of rows with AmountBillions recomputed.
func DeriveTrend(rows []TrendRecord) []TrendRecord {
	out := make([]TrendRecord, len(rows))
	for i, r := range rows {
		r.AmountBillions = r.Amount.Billions()
		out[i] = r
	}
	return out
}

// Derive recomputes the billions column of every table.
func (t Tables) Derive() Tables {
	return Tables{
		Categories:  DeriveCategories(t.Categories),
		Departments: DeriveDepartments(t.Departments),
		Trend:       DeriveTrend(t.Trend),
	}
}

// MergeDepartments combines an external department table with the static
// category and trend tables. External rows replace the static departments.
func MergeDepartments(static Tables, external []Department) Tables {
	return Tables{
		Categories:  static.Categories,
		Departments: Normalize(external),
		Trend:       static.Trend,
	}.Derive()
}

// SortByCode returns a copy of rows ordered by code, then name.
func SortByCode(rows []Department) []Department {
	out := append([]Department(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return out
}

package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Name   string
	Amount Amount
	Count  int
}

// Summary holds the headline metrics of the dashboard.
type Summary struct {
	// Total sums the category table, independent of filters.
	Total Amount
	// Mean and Max cover valid amounts of the filtered departments; both
	// are invalid when no valid amount is present.
	Mean  Amount
	Max   Amount
	Count int
}

// Summarize computes the headline metrics for the filtered department view.
func Summarize(categories []CategoryRecord, filtered []Department) Summary {
	total := decimal.Zero
	for _, c := range categories {
		if d, ok := c.Amount.Decimal(); ok {
			total = total.Add(d)
		}
	}

	s := Summary{Total: AmountFromDecimal(total), Count: len(filtered)}
	sum := decimal.Zero
	var n int64
	for _, r := range filtered {
		d, ok := r.Amount.Decimal()
		if !ok {
			continue
		}
		sum = sum.Add(d)
		n++
		if !s.Max.Valid() || r.Amount.Cmp(s.Max) > 0 {
			s.Max = r.Amount
		}
	}
	if n > 0 {
		s.Mean = AmountFromDecimal(sum.Div(decimal.NewFromInt(n)))
	}
	return s
}

// TopDepartments returns the n rows with the largest valid amounts, largest
// first, ties broken by code.
func TopDepartments(rows []Department, n int) []Department {
	valid := make([]Department, 0, len(rows))
	for _, r := range rows {
		if r.Amount.Valid() {
			valid = append(valid, r)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if c := valid[i].Amount.Cmp(valid[j].Amount); c != 0 {
			return c > 0
		}
		return valid[i].Code < valid[j].Code
	})
	if n >= 0 && len(valid) > n {
		valid = valid[:n]
	}
	return valid
}

// AggregateByCategory sums valid department amounts per category, largest
// total first. Categories whose rows are all invalid still appear with a
// zero total.
func AggregateByCategory(rows []Department) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	sums := make([]decimal.Decimal, 0)
	for _, r := range rows {
		i, ok := idx[r.Category]
		if !ok {
			i = len(out)
			idx[r.Category] = i
			out = append(out, CategoryAmount{Name: r.Category})
			sums = append(sums, decimal.Zero)
		}
		out[i].Count++
		if d, ok := r.Amount.Decimal(); ok {
			sums[i] = sums[i].Add(d)
		}
	}
	for i := range out {
		out[i].Amount = AmountFromDecimal(sums[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cmp(out[j].Amount) > 0
	})
	return out
}

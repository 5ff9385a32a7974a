package main

import (
	"sort"
	"time"
)

// Filter is a set of predicates combined with logical AND. A nil selection
// slice means the predicate is not applied; an empty non-nil slice is a
// legitimate empty selection and matches no rows. DateRange participates only
// when it holds exactly [from, to]; anything else (a half-picked range from a
// date widget) silently disables the date predicate.
type Filter struct {
	Areas     []string
	Statuses  []string
	States    []string
	DateRange []time.Time
}

// DefaultFilter selects every distinct value currently present in the
// dataset, so new categories in future files show up without code changes.
func DefaultFilter(ds *Dataset) Filter {
	return Filter{
		Areas:    distinctValues(ds, func(c CaseRecord) string { return c.Area }),
		Statuses: distinctValues(ds, func(c CaseRecord) string { return c.Status }),
		States:   distinctValues(ds, func(c CaseRecord) string { return c.State }),
	}
}

// Apply returns the rows satisfying every active predicate, in source order.
// The result is a fresh slice; the dataset is never mutated.
func (f Filter) Apply(ds *Dataset) []CaseRecord {
	out := make([]CaseRecord, 0, len(ds.Records))
	for _, rec := range ds.Records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (f Filter) matches(rec CaseRecord) bool {
	if !selectionContains(f.Areas, rec.Area) {
		return false
	}
	if !selectionContains(f.Statuses, rec.Status) {
		return false
	}
	if !selectionContains(f.States, rec.State) {
		return false
	}
	if len(f.DateRange) == 2 {
		// A missing opening date never satisfies a range bound.
		if !rec.HasOpeningDate() {
			return false
		}
		k := dateKey(rec.OpeningDate)
		if k < dateKey(f.DateRange[0]) || k > dateKey(f.DateRange[1]) {
			return false
		}
	}
	return true
}

func selectionContains(selection []string, v string) bool {
	if selection == nil {
		return true
	}
	for _, s := range selection {
		if s == v {
			return true
		}
	}
	return false
}

func distinctValues(ds *Dataset, key func(CaseRecord) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range ds.Records {
		v := key(rec)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

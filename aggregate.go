package main

import (
	"sort"
	"time"
)

// KPISummary holds the headline numbers of the dashboard.
type KPISummary struct {
	TotalCases       int
	TotalFees        float64
	EstimatedRevenue float64
	MeanSuccessProb  float64
}

func Summarize(records []CaseRecord) KPISummary {
	var s KPISummary
	s.TotalCases = len(records)
	var probSum float64
	for _, rec := range records {
		s.TotalFees += rec.Fee
		s.EstimatedRevenue += rec.EstimatedRevenue
		probSum += rec.SuccessProb
	}
	if s.TotalCases > 0 {
		s.MeanSuccessProb = probSum / float64(s.TotalCases)
	}
	return s
}

type LawyerStats struct {
	Lawyer          string
	TotalFees       float64
	CaseCount       int
	MeanSuccessProb float64
}

// LawyerPerformance groups records by assigned lawyer. Rows with an empty
// lawyer form their own group rather than being dropped. The result is
// ordered by total fees descending; ties keep source encounter order.
func LawyerPerformance(records []CaseRecord) []LawyerStats {
	index := make(map[string]int)
	var stats []LawyerStats
	probSums := make(map[string]float64)
	for _, rec := range records {
		i, ok := index[rec.Lawyer]
		if !ok {
			i = len(stats)
			index[rec.Lawyer] = i
			stats = append(stats, LawyerStats{Lawyer: rec.Lawyer})
		}
		stats[i].TotalFees += rec.Fee
		stats[i].CaseCount++
		probSums[rec.Lawyer] += rec.SuccessProb
	}
	for i := range stats {
		stats[i].MeanSuccessProb = probSums[stats[i].Lawyer] / float64(stats[i].CaseCount)
	}
	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalFees > stats[b].TotalFees
	})
	return stats
}

type AreaRevenue struct {
	Area      string
	TotalFees float64
}

// RevenueByArea sums fees per practice area, in encounter order. No further
// ordering is promised.
func RevenueByArea(records []CaseRecord) []AreaRevenue {
	index := make(map[string]int)
	var out []AreaRevenue
	for _, rec := range records {
		i, ok := index[rec.Area]
		if !ok {
			i = len(out)
			index[rec.Area] = i
			out = append(out, AreaRevenue{Area: rec.Area})
		}
		out[i].TotalFees += rec.Fee
	}
	return out
}

type WeeklyCount struct {
	WeekStart time.Time
	NewCases  int
}

// WeeklyNewCases buckets records into Monday-anchored calendar weeks by
// opening date. Records with a missing opening date are excluded before
// bucketing, and weeks with no cases are not emitted.
func WeeklyNewCases(records []CaseRecord) []WeeklyCount {
	counts := make(map[time.Time]int)
	for _, rec := range records {
		if !rec.HasOpeningDate() {
			continue
		}
		counts[weekStart(rec.OpeningDate)]++
	}
	out := make([]WeeklyCount, 0, len(counts))
	for week, n := range counts {
		out = append(out, WeeklyCount{WeekStart: week, NewCases: n})
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].WeekStart.Before(out[b].WeekStart)
	})
	return out
}

type CategoryCount struct {
	Value string
	Count int
}

// StatusBreakdown counts cases per status, most frequent first.
func StatusBreakdown(records []CaseRecord) []CategoryCount {
	return countBy(records, func(c CaseRecord) string { return c.Status })
}

// StateBreakdown counts cases per UF, most frequent first.
func StateBreakdown(records []CaseRecord) []CategoryCount {
	return countBy(records, func(c CaseRecord) string { return c.State })
}

func countBy(records []CaseRecord, key func(CaseRecord) string) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, rec := range records {
		v := key(rec)
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, CategoryCount{Value: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}

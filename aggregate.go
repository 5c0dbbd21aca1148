package main

import "math"

// Summary is the aggregate consumed by the downstream visualizer; the JSON
// field names are its compatibility contract.
type Summary struct {
	TotalInputs      int                `json:"total_inputs"`
	CategoryCounts   map[string]int     `json:"category_counts"`
	CategoryPercents map[string]float64 `json:"category_percents"`
}

// BuildSummary tallies classified labels over the full allowed set. Every
// category appears in the output, zero-count ones included. Percentages are
// rounded to two decimals independently, so they sum to 100 only within
// rounding error; with no inputs everything is 0.0.
func BuildSummary(set *CategorySet, categories []string) Summary {
	total := len(categories)
	counts := make(map[string]int, set.Len())
	for _, label := range set.Labels() {
		counts[label] = 0
	}
	for _, c := range categories {
		counts[c]++
	}

	percents := make(map[string]float64, set.Len())
	for _, label := range set.Labels() {
		if total == 0 {
			percents[label] = 0.0
		} else {
			percents[label] = round2(float64(counts[label]) * 100.0 / float64(total))
		}
	}

	return Summary{
		TotalInputs:      total,
		CategoryCounts:   counts,
		CategoryPercents: percents,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

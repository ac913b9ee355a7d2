// Package summary turns a location's raw rating history into ranked
// percentage summaries. Everything here is pure: the same rating set always
// produces the same output.
package summary

import (
	"math"
	"sort"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
)

// ValueCount is one ranked entry: a categorical value, how many ratings
// carried it, and its share of the category's respondents.
type ValueCount struct {
	Value      string  `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategorySummary is the top-2 ranking for one category. Total counts the
// ratings that contributed at least one value to the category, so multi-value
// percentages read as "share of respondents who mentioned this" and may sum
// past 100% across values.
type CategorySummary struct {
	Total int          `json:"total"`
	Top2  []ValueCount `json:"top2"`
}

// LocationSummary aggregates every static category for one location.
type LocationSummary struct {
	LocationKey  string
	TotalRatings int
	Categories   map[domain.Category]CategorySummary
}

// Build computes the summary for a location from its full rating set. Ranking
// is by count descending with ties broken lexicographically on the value, so
// output is reproducible for any input order.
func Build(locationKey string, ratings []domain.Rating) LocationSummary {
	out := LocationSummary{
		LocationKey:  locationKey,
		TotalRatings: len(ratings),
		Categories:   make(map[domain.Category]CategorySummary),
	}

	for _, category := range domain.SingleCategories {
		counts := make(map[string]int)
		respondents := 0
		for _, rating := range ratings {
			if value, ok := rating.Attributes[category]; ok && value != "" {
				counts[value]++
				respondents++
			}
		}
		out.Categories[category] = rank(counts, respondents)
	}

	for _, category := range domain.MultiCategories {
		counts := make(map[string]int)
		respondents := 0
		for _, rating := range ratings {
			values := rating.MultiAttributes[category]
			if len(values) == 0 {
				continue
			}
			respondents++
			for _, value := range values {
				counts[value]++
			}
		}
		out.Categories[category] = rank(counts, respondents)
	}

	return out
}

func rank(counts map[string]int, respondents int) CategorySummary {
	if respondents == 0 {
		return CategorySummary{Total: 0, Top2: []ValueCount{}}
	}

	ranked := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		ranked = append(ranked, ValueCount{
			Value:      value,
			Count:      count,
			Percentage: roundToOneDecimal(float64(count) / float64(respondents) * 100),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})

	if len(ranked) > 2 {
		ranked = ranked[:2]
	}
	return CategorySummary{Total: respondents, Top2: ranked}
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}

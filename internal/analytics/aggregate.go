// Package analytics computes KPI summaries over normalized transactions
// and renders them as a deterministic plain-text report.
package analytics

import (
	"sort"

	"github.com/salespulse/salespulse/internal/model"
)

// Filter is a predicate over transactions, used for drill-downs. Filters
// operate on a copied view; the base transaction set is never mutated.
type Filter func(model.Transaction) bool

// FilterCity keeps only transactions from the given city.
func FilterCity(city string) Filter {
	return func(t model.Transaction) bool {
		return t.City == city
	}
}

// FilterPeriod keeps only transactions in the given period key ("2006-01").
func FilterPeriod(period string) Filter {
	return func(t model.Transaction) bool {
		return t.PeriodKey == period
	}
}

// Apply returns a fresh slice holding the transactions that pass every filter.
func Apply(transactions []model.Transaction, filters ...Filter) []model.Transaction {
	filtered := make([]model.Transaction, 0, len(transactions))
next:
	for _, t := range transactions {
		for _, keep := range filters {
			if !keep(t) {
				continue next
			}
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// topN is the cutoff for the product and city leaderboards.
const topN = 5

// Aggregate computes a KPI summary over the given transactions, applying
// any filters first. It is a pure function: no hidden state, no baseline.
// An empty input yields zero scalars and empty sequences, never an error.
func Aggregate(transactions []model.Transaction, schema model.Schema, filters ...Filter) model.KPISummary {
	if len(filters) > 0 {
		transactions = Apply(transactions, filters...)
	}

	summary := model.KPISummary{
		TotalTransactions: len(transactions),
	}

	for _, t := range transactions {
		summary.TotalRevenue += t.Revenue
		summary.TotalItemsSold += t.Quantity
	}
	if summary.TotalTransactions > 0 {
		summary.AvgOrderValue = summary.TotalRevenue / float64(summary.TotalTransactions)
	}

	if schema.HasProduct {
		summary.TopProducts = topRevenue(transactions, func(t model.Transaction) string { return t.Product }, topN)
	}
	if schema.HasCity {
		summary.TopCities = topRevenue(transactions, func(t model.Transaction) string { return t.City }, topN)
	}
	summary.RevenueByPeriod = revenueByPeriod(transactions)

	return summary
}

// topRevenue groups by key, sums revenue per group and returns the top n
// groups descending by revenue. Ties keep first-seen order.
func topRevenue(transactions []model.Transaction, key func(model.Transaction) string, n int) []model.RevenueEntry {
	totals := make(map[string]float64)
	order := make([]string, 0)

	for _, t := range transactions {
		k := key(t)
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += t.Revenue
	}

	entries := make([]model.RevenueEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, model.RevenueEntry{Key: k, Revenue: totals[k]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Revenue > entries[j].Revenue
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// revenueByPeriod sums revenue per period key, ascending chronologically.
// Lexicographic order is chronological because keys are zero-padded.
func revenueByPeriod(transactions []model.Transaction) []model.RevenueEntry {
	totals := make(map[string]float64)
	for _, t := range transactions {
		totals[t.PeriodKey] += t.Revenue
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]model.RevenueEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, model.RevenueEntry{Key: k, Revenue: totals[k]})
	}
	return entries
}

// Cities returns the sorted distinct city values present, for filter UIs.
// Empty city values are skipped.
func Cities(transactions []model.Transaction) []string {
	seen := make(map[string]bool)
	cities := make([]string, 0)
	for _, t := range transactions {
		if t.City == "" || seen[t.City] {
			continue
		}
		seen[t.City] = true
		cities = append(cities, t.City)
	}
	sort.Strings(cities)
	return cities
}

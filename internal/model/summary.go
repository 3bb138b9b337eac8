package model

// RevenueEntry is one (group key, summed revenue) pair in an ordered
// aggregation result. Slices of these preserve sort order, which maps
// do not.
type RevenueEntry struct {
	Key     string
	Revenue float64
}

// KPISummary is the aggregate result computed from a Transaction set,
// either the full cached set or a filtered drill-down view. It is always
// built fresh; nothing mutates one in place.
type KPISummary struct {
	TotalRevenue      float64
	TotalTransactions int
	AvgOrderValue     float64
	TotalItemsSold    float64

	// TopProducts and TopCities are descending by revenue, at most five
	// entries, ties in first-seen order. TopCities is nil when the source
	// schema has no city column (distinct from an empty result).
	TopProducts []RevenueEntry
	TopCities   []RevenueEntry

	// RevenueByPeriod is ascending by period key ("2006-01"), one entry
	// per distinct month in the aggregated set.
	RevenueByPeriod []RevenueEntry
}

package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/salespulse/salespulse/internal/model"
)

// FormatSummary renders a KPI summary as a fixed-section plain-text
// report. The output is byte-stable for a given summary: it is the data
// payload handed to the narrative generator, so reproducibility matters.
func FormatSummary(summary model.KPISummary) string {
	var lines []string

	lines = append(lines, "=== High-Level Sales Summary ===")
	lines = append(lines, fmt.Sprintf("Total revenue: $%s", formatAmount(summary.TotalRevenue)))
	lines = append(lines, fmt.Sprintf("Total transactions: %s", formatCount(int64(summary.TotalTransactions))))
	lines = append(lines, fmt.Sprintf("Average order value: $%s", formatAmount(summary.AvgOrderValue)))
	lines = append(lines, fmt.Sprintf("Total items sold: %s", formatCount(int64(math.Round(summary.TotalItemsSold)))))

	if summary.TopProducts != nil {
		lines = append(lines, "", "=== Top 5 Products by Revenue ===")
		for _, entry := range summary.TopProducts {
			lines = append(lines, fmt.Sprintf("- %s: $%s", entry.Key, formatAmount(entry.Revenue)))
		}
	}

	if summary.TopCities != nil {
		lines = append(lines, "", "=== Top 5 Cities by Revenue ===")
		for _, entry := range summary.TopCities {
			lines = append(lines, fmt.Sprintf("- %s: $%s", entry.Key, formatAmount(entry.Revenue)))
		}
	}

	lines = append(lines, "", "=== Monthly Revenue (chronological) ===")
	for _, entry := range summary.RevenueByPeriod {
		lines = append(lines, fmt.Sprintf("- %s: $%s", entry.Key, formatAmount(entry.Revenue)))
	}

	return strings.Join(lines, "\n")
}

// formatAmount renders a currency amount with thousands separators and
// exactly two decimals, e.g. 1234567.5 -> "1,234,567.50".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		// NaN and the infinities render without a decimal point.
		return s
	}
	return groupThousands(s[:dot]) + s[dot:]
}

// formatCount renders an integer count with thousands separators.
func formatCount(v int64) string {
	return groupThousands(fmt.Sprintf("%d", v))
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

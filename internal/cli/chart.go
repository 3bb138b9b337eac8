package cli

import (
	"fmt"
	"strings"

	"github.com/salespulse/salespulse/internal/model"
)

// BarChart renders revenue entries as horizontal bars scaled to the
// largest value. Labels are right-padded so bars line up.
func BarChart(entries []model.RevenueEntry, width int) string {
	if len(entries) == 0 {
		return SubtleStyle.Render("(no data)")
	}
	if width < 10 {
		width = 10
	}

	maxRevenue := 0.0
	labelWidth := 0
	for _, e := range entries {
		if e.Revenue > maxRevenue {
			maxRevenue = e.Revenue
		}
		if len(e.Key) > labelWidth {
			labelWidth = len(e.Key)
		}
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		barLen := 0
		if maxRevenue > 0 && e.Revenue > 0 {
			barLen = int(e.Revenue / maxRevenue * float64(width))
			if barLen == 0 {
				barLen = 1
			}
		}
		bar := BarStyle.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%-*s %s %s",
			labelWidth, e.Key, bar, SubtleStyle.Render(fmt.Sprintf("$%.2f", e.Revenue))))
	}

	return strings.Join(lines, "\n")
}

package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/model"
)

// Recognized canonical column names, first match wins. The required date,
// items and cost columns map to Transaction.Date, Quantity and Revenue.
var (
	dateColumns    = []string{"date", "order_date", "transaction_date", "invoice_date"}
	itemsColumns   = []string{"total_items", "items", "quantity", "qty", "units"}
	costColumns    = []string{"total_cost", "cost", "amount", "revenue", "total"}
	productColumns = []string{"product", "product_name", "item_name"}
	cityColumns    = []string{"city", "customer_city"}
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	time.RFC3339,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CanonicalColumn resolves a raw column name to its canonical form:
// lowercased, trimmed, interior whitespace replaced with underscores.
// Idempotent: canonicalizing a canonical name is a no-op.
func CanonicalColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRun.ReplaceAllString(name, "_")
}

// Normalizer turns raw records into canonical transactions.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize validates the dataset schema and converts every parseable row
// into a Transaction. Rows missing a parseable date, quantity or revenue
// are dropped whole; a missing required column is fatal even when the
// file has no data rows at all.
func (n *Normalizer) Normalize(header []string, records []model.RawRecord) ([]model.Transaction, model.Schema, error) {
	// Resolve the header once, before any per-row coercion.
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[CanonicalColumn(name)] = i
	}

	dateIdx, ok := resolveColumn(columns, dateColumns)
	if !ok {
		return nil, model.Schema{}, common.NewUserError(
			"no date column found in the dataset",
			fmt.Errorf("%w: missing date field", common.ErrSchema))
	}
	itemsIdx, ok := resolveColumn(columns, itemsColumns)
	if !ok {
		return nil, model.Schema{}, common.NewUserError(
			"no item-count column found to create quantity",
			fmt.Errorf("%w: missing items field", common.ErrSchema))
	}
	costIdx, ok := resolveColumn(columns, costColumns)
	if !ok {
		return nil, model.Schema{}, common.NewUserError(
			"no cost column found to create revenue",
			fmt.Errorf("%w: missing cost field", common.ErrSchema))
	}

	productIdx, hasProduct := resolveColumn(columns, productColumns)
	cityIdx, hasCity := resolveColumn(columns, cityColumns)

	schema := model.Schema{
		HasProduct: hasProduct,
		HasCity:    hasCity,
	}

	transactions := make([]model.Transaction, 0, len(records))
	dropped := 0

	for _, record := range records {
		date, ok := parseDate(cell(record, dateIdx))
		if !ok {
			dropped++
			continue
		}
		quantity, ok := parseNumeric(cell(record, itemsIdx))
		if !ok || quantity < 0 {
			dropped++
			continue
		}
		revenue, ok := parseNumeric(cell(record, costIdx))
		if !ok {
			dropped++
			continue
		}

		txn := model.Transaction{
			Date:      date,
			Quantity:  quantity,
			Revenue:   revenue,
			PeriodKey: model.PeriodKeyFor(date),
		}
		if hasProduct {
			txn.Product = strings.TrimSpace(cell(record, productIdx))
		}
		if hasCity {
			txn.City = strings.TrimSpace(cell(record, cityIdx))
		}

		transactions = append(transactions, txn)
	}

	if dropped > 0 {
		slog.Debug("Dropped unparseable rows during normalization",
			"dropped", dropped,
			"kept", len(transactions))
	}

	return transactions, schema, nil
}

// resolveColumn finds the index of the first recognized alias present.
func resolveColumn(columns map[string]int, candidates []string) (int, bool) {
	for _, name := range candidates {
		if idx, ok := columns[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// cell returns the value at idx, tolerating rows shorter than the header.
func cell(record model.RawRecord, idx int) string {
	if idx < 0 || idx >= len(record.Values) {
		return ""
	}
	return record.Values[idx]
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "$")
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf" spellings; neither is a usable
	// quantity or amount, so the row must be dropped like any other
	// unparseable value.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

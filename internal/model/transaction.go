package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// RawRecord is a single row as read from the source file, before any
// normalization: an ordered header plus the raw cell values for one row.
type RawRecord struct {
	Header []string
	Values []string
}

// Get returns the value under the given header name, or "" if the column
// does not exist or the row is short.
func (r RawRecord) Get(column string) string {
	for i, h := range r.Header {
		if h == column && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// Transaction is the canonical unit the analytics pipeline operates on.
// One is only constructed when date, quantity and revenue all parsed
// cleanly; rows failing any of those are dropped during normalization.
type Transaction struct {
	Date      time.Time
	Product   string
	City      string
	PeriodKey string // calendar month of Date, "2006-01"
	Quantity  float64
	Revenue   float64
}

// PeriodKeyFor truncates a date to its calendar month grouping key.
func PeriodKeyFor(date time.Time) string {
	return date.Format("2006-01")
}

// Fingerprint produces a stable hash for change detection on the row.
func (t *Transaction) Fingerprint() string {
	data := fmt.Sprintf("%s:%.4f:%.4f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Quantity,
		t.Revenue,
		t.Product,
		t.City)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Schema records which optional columns the source dataset carried.
// Aggregations and filters over absent columns are disabled downstream.
type Schema struct {
	HasProduct bool
	HasCity    bool
}

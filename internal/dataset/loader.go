// Package dataset loads delimited sales data files and normalizes them
// into canonical transactions.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/model"
)

// Loader reads a delimited tabular file with a header row into raw records.
type Loader struct {
	Delimiter rune // defaults to ','
}

// NewLoader creates a Loader with default settings.
func NewLoader() *Loader {
	return &Loader{Delimiter: ','}
}

// LoadFile reads the file at path into a header plus an ordered sequence
// of raw records. A missing or unreadable file, or a file without a
// header row, is fatal.
func (l *Loader) LoadFile(path string) ([]string, []model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, common.NewUserError(
			fmt.Sprintf("cannot open dataset %s", path),
			fmt.Errorf("%w: %v", common.ErrDataSource, err))
	}
	defer func() { _ = f.Close() }()

	return l.Load(f)
}

// Load reads the header and raw records from r. A header-only file is
// not an error: it yields the header with zero records, so schema
// validation still runs downstream.
func (l *Loader) Load(r io.Reader) ([]string, []model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // ragged rows are handled per-field downstream
	if l.Delimiter != 0 {
		cr.Comma = l.Delimiter
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: file has no header row", common.ErrDataSource)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading header: %v", common.ErrDataSource, err)
	}

	var records []model.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading row %d: %v", common.ErrDataSource, len(records)+2, err)
		}
		records = append(records, model.RawRecord{Header: header, Values: row})
	}

	return header, records, nil
}

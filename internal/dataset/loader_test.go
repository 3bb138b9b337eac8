package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/common"
)

func TestLoaderLoad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantRows int
	}{
		{
			name:     "header and rows",
			input:    "Date,Total Items,Total Cost\n2024-01-15,3,30\n2024-01-20,2,20\n",
			wantRows: 2,
		},
		{
			name:     "header only",
			input:    "Date,Total Items,Total Cost\n",
			wantRows: 0,
		},
		{
			name:    "empty file has no header",
			input:   "",
			wantErr: common.ErrDataSource,
		},
		{
			name:     "ragged rows are kept for downstream handling",
			input:    "date,total_items,total_cost,city\n2024-01-15,3,30\n2024-01-20,2,20,Lisbon\n",
			wantRows: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, records, err := NewLoader().Load(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, header)
			assert.Len(t, records, tt.wantRows)
			for _, r := range records {
				assert.NotEmpty(t, r.Header)
			}
		})
	}
}

func TestLoaderLoadFileMissing(t *testing.T) {
	_, _, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDataSource))

	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))
}

func TestLoaderLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "date,total_items,total_cost\n2024-01-15,3,30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	header, records, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "total_items", "total_cost"}, header)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-15", records[0].Get("date"))
	assert.Equal(t, "30", records[0].Get("total_cost"))
}

func TestLoaderCustomDelimiter(t *testing.T) {
	loader := &Loader{Delimiter: ';'}
	_, records, err := loader.Load(strings.NewReader("date;total_items;total_cost\n2024-01-15;3;30\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"2024-01-15", "3", "30"}, records[0].Values)
}

func TestLoaderHeaderOnlySchemaStillChecked(t *testing.T) {
	header, records, err := NewLoader().Load(strings.NewReader("date,total_items\n"))
	require.NoError(t, err)
	require.Empty(t, records)

	// The header reaches the normalizer even with no data rows, so the
	// missing cost column is still fatal.
	_, _, err = NewNormalizer().Normalize(header, records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchema))
}

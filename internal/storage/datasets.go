package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/model"
)

// SaveDataset stores a normalized dataset and its transactions, replacing
// any previous cache entry for the same source path. Transactions are
// stored with their original position so ordering survives a round-trip.
func (s *SQLiteStorage) SaveDataset(ctx context.Context, ds model.Dataset, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ds.Path, "dataset path"); err != nil {
		return err
	}
	if err := validateString(ds.Fingerprint, "dataset fingerprint"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Drop any previous cache entry for this path.
	var oldID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE path = ?`, ds.Path).Scan(&oldID)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE dataset_id = ?`, oldID); err != nil {
			return fmt.Errorf("failed to clear cached transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, oldID); err != nil {
			return fmt.Errorf("failed to clear cached dataset: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// first load of this path
	default:
		return fmt.Errorf("failed to look up dataset: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO datasets (path, fingerprint, has_product, has_city, row_count, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ds.Path, ds.Fingerprint, ds.Schema.HasProduct, ds.Schema.HasCity, len(transactions), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	datasetID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get dataset id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (dataset_id, position, date, quantity, revenue, product, city, period_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range transactions {
		if _, err := stmt.ExecContext(ctx, datasetID, i, t.Date.UTC(), t.Quantity, t.Revenue, t.Product, t.City, t.PeriodKey); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetDataset loads the cached dataset and transactions for a source path.
// Returns common.ErrNotFound when the path has never been loaded.
func (s *SQLiteStorage) GetDataset(ctx context.Context, path string) (model.Dataset, []model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return model.Dataset{}, nil, err
	}
	if err := validateString(path, "dataset path"); err != nil {
		return model.Dataset{}, nil, err
	}

	var (
		ds model.Dataset
		id int64
	)
	ds.Path = path

	err := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, has_product, has_city, row_count, loaded_at
		FROM datasets WHERE path = ?
	`, path).Scan(&id, &ds.Fingerprint, &ds.Schema.HasProduct, &ds.Schema.HasCity, &ds.RowCount, &ds.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Dataset{}, nil, fmt.Errorf("%w: dataset %s not loaded", common.ErrNotFound, path)
	}
	if err != nil {
		return model.Dataset{}, nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, quantity, revenue, product, city, period_key
		FROM transactions
		WHERE dataset_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return model.Dataset{}, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := make([]model.Transaction, 0, ds.RowCount)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.Date, &t.Quantity, &t.Revenue, &t.Product, &t.City, &t.PeriodKey); err != nil {
			return model.Dataset{}, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Date = t.Date.UTC()
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return model.Dataset{}, nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return ds, transactions, nil
}

// GetFreshDataset loads the cache entry for path and verifies it against
// the current source fingerprint. A mismatch returns common.ErrStaleCache
// so callers can re-run the load pipeline.
func (s *SQLiteStorage) GetFreshDataset(ctx context.Context, path, fingerprint string) (model.Dataset, []model.Transaction, error) {
	ds, transactions, err := s.GetDataset(ctx, path)
	if err != nil {
		return model.Dataset{}, nil, err
	}
	if ds.Fingerprint != fingerprint {
		return model.Dataset{}, nil, fmt.Errorf("%w: %s changed since last load", common.ErrStaleCache, path)
	}
	return ds, transactions, nil
}

// ListDatasets returns all cached datasets, most recently loaded first.
func (s *SQLiteStorage) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, fingerprint, has_product, has_city, row_count, loaded_at
		FROM datasets
		ORDER BY loaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var datasets []model.Dataset
	for rows.Next() {
		var ds model.Dataset
		if err := rows.Scan(&ds.Path, &ds.Fingerprint, &ds.Schema.HasProduct, &ds.Schema.HasCity, &ds.RowCount, &ds.LoadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

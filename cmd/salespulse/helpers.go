package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/config"
	"github.com/salespulse/salespulse/internal/dataset"
	"github.com/salespulse/salespulse/internal/insights"
	"github.com/salespulse/salespulse/internal/llm"
	"github.com/salespulse/salespulse/internal/model"
	"github.com/salespulse/salespulse/internal/storage"
)

// openStorage opens the transaction cache and applies migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// runLoadPipeline loads, normalizes and caches one source file.
func runLoadPipeline(ctx context.Context, store *storage.SQLiteStorage, path string) (model.Dataset, []model.Transaction, error) {
	absPath, err := filepath.Abs(config.ExpandPath(path))
	if err != nil {
		return model.Dataset{}, nil, fmt.Errorf("invalid path %s: %w", path, err)
	}

	fingerprint, err := dataset.Fingerprint(absPath)
	if err != nil {
		return model.Dataset{}, nil, err
	}

	header, records, err := dataset.NewLoader().LoadFile(absPath)
	if err != nil {
		return model.Dataset{}, nil, err
	}

	transactions, schema, err := dataset.NewNormalizer().Normalize(header, records)
	if err != nil {
		return model.Dataset{}, nil, err
	}

	ds := model.Dataset{
		Path:        absPath,
		Fingerprint: fingerprint,
		Schema:      schema,
		RowCount:    len(transactions),
	}

	if err := store.SaveDataset(ctx, ds, transactions); err != nil {
		return model.Dataset{}, nil, fmt.Errorf("failed to cache dataset: %w", err)
	}

	slog.Info("Dataset loaded",
		"path", absPath,
		"rows_in", len(records),
		"transactions", len(transactions),
		"has_product", schema.HasProduct,
		"has_city", schema.HasCity)

	return ds, transactions, nil
}

// getDataset fetches the cached transactions for path, transparently
// re-running the load pipeline when the cache is missing or the source
// file changed since the last load.
func getDataset(ctx context.Context, store *storage.SQLiteStorage, path string) (model.Dataset, []model.Transaction, error) {
	absPath, err := filepath.Abs(config.ExpandPath(path))
	if err != nil {
		return model.Dataset{}, nil, fmt.Errorf("invalid path %s: %w", path, err)
	}

	fingerprint, err := dataset.Fingerprint(absPath)
	if err != nil {
		return model.Dataset{}, nil, err
	}

	ds, transactions, err := store.GetFreshDataset(ctx, absPath, fingerprint)
	switch {
	case err == nil:
		return ds, transactions, nil
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrStaleCache):
		slog.Info("Reloading dataset", "path", absPath, "reason", err)
		return runLoadPipeline(ctx, store, absPath)
	default:
		return model.Dataset{}, nil, err
	}
}

// newInsightsGenerator builds the narrative generator from config, or
// returns nil when no API key is configured.
func newInsightsGenerator() (*insights.Generator, error) {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		return nil, nil
	}

	client, err := llm.NewClient(llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      apiKey,
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return insights.NewGenerator(client)
}

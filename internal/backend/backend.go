package backend

import (
	"context"
	"fmt"
	"log/slog"

	"mealbook/internal/config"
	"mealbook/internal/rowstore"
	"mealbook/internal/rowstore/google"
	"mealbook/internal/rowstore/memory"
)

// NewRowStore creates the configured row store backend.
func NewRowStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (rowstore.Store, error) {
	switch cfg.RowStoreBackend {
	case "sheets":
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets row store: %w", err)
		}
		logger.Info("Initialized Google Sheets row store",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return cli, nil
	case "memory":
		logger.Info("Initialized in-memory row store")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported row store backend: %s", cfg.RowStoreBackend)
	}
}

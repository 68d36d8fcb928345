package storage

import (
	"fmt"

	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
)

// NewFromConfig opens the backend selected by cfg.Backend.
func NewFromConfig(cfg *config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStorage(cfg.Memory.MaxRecords), nil
	case "sqlite":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, history.NewStorageError(cfg.Backend, "open",
			fmt.Errorf("unknown history backend %q", cfg.Backend))
	}
}

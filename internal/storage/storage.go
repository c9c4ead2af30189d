package storage

import (
	"log/slog"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/internal/storage/sql"
)

// NewStorage creates a new storage instance based on the configuration.
// It uses the first enabled SQL database.
func NewStorage(serviceConfig *config.Config, logger *slog.Logger) (abstractions.Storage, error) {
	name, settings, ok := serviceConfig.Database.EnabledSQL()
	if !ok {
		return nil, serviceerrors.NewStorageError("database configuration is required, no enabled SQL database found")
	}
	logger.Info("Using SQL database", "name", name)
	return sql.NewStorage(settings, logger)
}

package sql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/go-viper/mapstructure/v2"
	// import the postgres driver - "pgx"
	_ "github.com/jackc/pgx/v5/stdlib"
	// import the sqlite driver - "sqlite"
	_ "modernc.org/sqlite"

	"github.com/xlml/bench-metrics/internal/abstractions"
	se "github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/internal/storage/storage_sql"
	"github.com/xlml/bench-metrics/pkg/api"
)

type SQLStorage struct {
	sqlConfig  *SQLDatabaseConfig
	statements *storage_sql.Statements
	pool       *sql.DB
	logger     *slog.Logger
}

func NewStorage(config map[string]any, logger *slog.Logger) (abstractions.Storage, error) {
	var sqlConfig SQLDatabaseConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &sqlConfig,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	// check that the driver is supported
	statements, err := storage_sql.ForDriver(sqlConfig.Driver)
	if err != nil {
		return nil, getUnsupportedDriverError(sqlConfig.Driver)
	}

	if err := sqlConfig.check(); err != nil {
		return nil, se.NewStorageErrorWithError(err, "invalid %s database configuration", sqlConfig.Driver)
	}
	logger = logger.With("driver", sqlConfig.Driver, "url", sqlConfig.redactedURL())
	logger.Info("Creating SQL storage")

	pool, err := sql.Open(sqlConfig.Driver, sqlConfig.URL)
	if err != nil {
		return nil, err
	}

	if sqlConfig.ConnMaxLifetime != nil {
		pool.SetConnMaxLifetime(*sqlConfig.ConnMaxLifetime)
	}
	if sqlConfig.ConnMaxIdleTime != nil {
		pool.SetConnMaxIdleTime(*sqlConfig.ConnMaxIdleTime)
	}
	if sqlConfig.MaxIdleConns != nil {
		pool.SetMaxIdleConns(*sqlConfig.MaxIdleConns)
	}
	if sqlConfig.MaxOpenConns != nil {
		pool.SetMaxOpenConns(*sqlConfig.MaxOpenConns)
	}

	storage := &SQLStorage{
		sqlConfig:  &sqlConfig,
		statements: statements,
		pool:       pool,
		logger:     logger,
	}

	// ping the database to verify the DSN provided by the user is valid and the server is accessible
	logger.Info("Pinging SQL storage")
	err = storage.Ping(1 * time.Second)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	// ensure the schemas are created
	logger.Info("Ensuring the dataset tables exist")
	if err := storage.ensureSchema(); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return storage, nil
}

func getUnsupportedDriverError(driver string) error {
	return se.NewStorageError("unsupported SQL driver %q, supported drivers are %s and %s", driver, storage_sql.SQLITE_DRIVER, storage_sql.POSTGRES_DRIVER)
}

// Ping the database to verify DSN provided by the user is valid and the
// server accessible.
func (s *SQLStorage) Ping(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.pool.PingContext(ctx)
}

func (s *SQLStorage) GetDatasourceName() string {
	return s.sqlConfig.Driver
}

func (s *SQLStorage) ensureSchema() error {
	for _, dataset := range api.DatasetOptions() {
		for _, statement := range s.statements.CreateTables(api.DatasetOption(dataset)) {
			if _, err := s.pool.ExecContext(context.Background(), statement); err != nil {
				return se.NewStorageErrorWithError(err, "failed to create the tables of %s", dataset)
			}
		}
	}
	return nil
}

// withTransaction runs fn in a transaction. The transaction is rolled back
// when fn returns an error, and committed otherwise.
func (s *SQLStorage) withTransaction(ctx context.Context, name string, resourceID string, fn func(txn *sql.Tx) error) error {
	txn, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to start transaction", "name", name, "id", resourceID, "error", err)
		return se.NewStorageErrorWithError(err, "failed to start transaction %s", name)
	}
	if err := fn(txn); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("Failed to roll back transaction", "name", name, "id", resourceID, "error", rbErr)
		}
		var rollback *se.RollbackError
		if errors.As(err, &rollback) {
			return rollback.Unwrap()
		}
		return err
	}
	if err := txn.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "name", name, "id", resourceID, "error", err)
		return se.NewStorageErrorWithError(err, "failed to commit transaction %s", name)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	return s.pool.Close()
}

package storage_sql

import (
	"fmt"
	"strings"

	"github.com/xlml/bench-metrics/pkg/api"
)

const (
	// These are the only drivers currently supported
	SQLITE_DRIVER   = "sqlite"
	POSTGRES_DRIVER = "pgx"
)

// Statements builds the SQL for one driver. Table names are derived from
// api.DatasetOption values only, never from request input.
type Statements struct {
	driver string
}

func ForDriver(driver string) (*Statements, error) {
	switch driver {
	case SQLITE_DRIVER, POSTGRES_DRIVER:
		return &Statements{driver: driver}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func RunsTable(dataset api.DatasetOption) string {
	return string(dataset) + "_runs"
}

func MetricsTable(dataset api.DatasetOption) string {
	return string(dataset) + "_metrics"
}

// placeholders returns n bind parameters starting at from.
func (s *Statements) placeholders(from int, n int) []string {
	params := make([]string, n)
	for i := range params {
		if s.driver == POSTGRES_DRIVER {
			params[i] = fmt.Sprintf("$%d", from+i)
		} else {
			params[i] = "?"
		}
	}
	return params
}

func (s *Statements) jsonType() string {
	if s.driver == POSTGRES_DRIVER {
		return "JSONB"
	}
	return "TEXT"
}

// CreateTables returns the statements creating the run and metric tables of a dataset.
func (s *Statements) CreateTables(dataset api.DatasetOption) []string {
	runs, metrics := RunsTable(dataset), MetricsTable(dataset)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id           VARCHAR(36) PRIMARY KEY,
    benchmark_id VARCHAR(255) NOT NULL,
    created_at   TIMESTAMP NOT NULL,
    metric_count INTEGER NOT NULL,
    entity       %s NOT NULL
);`, runs, s.jsonType()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_benchmark_id_idx ON %s (benchmark_id);`, runs, runs),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    run_id     VARCHAR(36) NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
    source     VARCHAR(32) NOT NULL,
    metric     VARCHAR(512) NOT NULL,
    value      DOUBLE PRECISION NOT NULL,
    dimensions %s
);`, metrics, runs, s.jsonType()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_run_id_idx ON %s (run_id);`, metrics, metrics),
	}
}

// InsertRun the order of arguments is:
// id benchmark_id created_at metric_count entity
func (s *Statements) InsertRun(dataset api.DatasetOption) string {
	return fmt.Sprintf(`INSERT INTO %s (id, benchmark_id, created_at, metric_count, entity) VALUES (%s);`,
		RunsTable(dataset), strings.Join(s.placeholders(1, 5), ", "))
}

// InsertMetric the order of arguments is:
// run_id source metric value dimensions
func (s *Statements) InsertMetric(dataset api.DatasetOption) string {
	return fmt.Sprintf(`INSERT INTO %s (run_id, source, metric, value, dimensions) VALUES (%s);`,
		MetricsTable(dataset), strings.Join(s.placeholders(1, 5), ", "))
}

// GetRun the order of arguments is:
// id
func (s *Statements) GetRun(dataset api.DatasetOption) string {
	return fmt.Sprintf(`SELECT entity FROM %s WHERE id = %s;`, RunsTable(dataset), s.placeholders(1, 1)[0])
}

func (s *Statements) where(benchmarkFilter bool) string {
	if !benchmarkFilter {
		return ""
	}
	return " WHERE benchmark_id = " + s.placeholders(1, 1)[0]
}

// CountRuns the order of arguments is:
// [benchmark_id]
func (s *Statements) CountRuns(dataset api.DatasetOption, benchmarkFilter bool) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s%s;`, RunsTable(dataset), s.where(benchmarkFilter))
}

// ListRuns the order of arguments is:
// [benchmark_id] limit offset
func (s *Statements) ListRuns(dataset api.DatasetOption, benchmarkFilter bool) string {
	next := 1
	if benchmarkFilter {
		next = 2
	}
	params := s.placeholders(next, 2)
	return fmt.Sprintf(`SELECT id, benchmark_id, created_at, metric_count FROM %s%s ORDER BY created_at DESC, id LIMIT %s OFFSET %s;`,
		RunsTable(dataset), s.where(benchmarkFilter), params[0], params[1])
}

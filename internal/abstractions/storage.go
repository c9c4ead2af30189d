package abstractions

import (
	"time"

	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/pkg/api"
)

// Storage persists ingestion results, one table per dataset.
type Storage interface {
	GetDatasourceName() string
	Ping(timeout time.Duration) error
	SaveRunResult(ctx *executioncontext.ExecutionContext, result *api.RunResult) error
	GetRunResult(ctx *executioncontext.ExecutionContext, dataset api.DatasetOption, runID string) (*api.RunResult, error)
	ListRuns(ctx *executioncontext.ExecutionContext, dataset api.DatasetOption, benchmarkID string, limit int, offset int) (*api.RunSummaryList, error)
	Close() error
}

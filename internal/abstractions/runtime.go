package abstractions

import (
	"context"
	"log/slog"

	"github.com/xlml/bench-metrics/pkg/api"
)

// Runtime interface defines the methods for handing benchmark runs over to the
// place where they execute. Concrete implementations hold the specific aspects
// of various runtimes (i.e. K8s, local, etc.). No other places in the code should
// be pointing directly to K8s or other runtime specific details.
type Runtime interface {
	WithLogger(logger *slog.Logger) Runtime
	WithContext(ctx context.Context) Runtime
	Name() string
	// PublishRun stores the run definition and returns where it was stored.
	PublishRun(run *api.BenchmarkRun) (string, error)
	// FetchRun reads back a published run by benchmark id.
	FetchRun(benchmarkID string) (*api.BenchmarkRun, error)
}

package handlers

import (
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

// HandleGetBenchmark handles GET /api/v1/benchmarks/{benchmark_id} and returns
// the run definition last published for the benchmark.
func (h *Handlers) HandleGetBenchmark(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	if !requireMethod(ctx, r, w, "GET") {
		return
	}
	benchmarkID := r.PathValue("benchmark_id")
	if benchmarkID == "" {
		writeError(ctx, w, serviceerrors.NewServiceError(messages.MissingPathParameter, "ParameterName", "benchmark_id"))
		return
	}

	ctx = ctx.With(constants.LOG_BENCHMARK_ID, benchmarkID)
	run, err := h.runtime.WithContext(ctx.Ctx).WithLogger(ctx.Logger).FetchRun(benchmarkID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteJSON(api.DocumentOfRun(run), constants.HTTPCodeOK)
}

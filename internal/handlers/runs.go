package handlers

import (
	"strconv"

	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

const maxLimit = 500

func firstQuery(r http_wrappers.RequestWrapper, key string) string {
	if values := r.Query(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func intQuery(r http_wrappers.RequestWrapper, key string, fallback int) (int, error) {
	value := firstQuery(r, key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, serviceerrors.NewServiceError(messages.QueryParameterInvalid, "ParameterName", key, "Type", "non-negative integer", "Value", value)
	}
	return n, nil
}

func datasetParameter(r http_wrappers.RequestWrapper) (api.DatasetOption, error) {
	value := r.PathValue("dataset")
	if value == "" {
		return "", serviceerrors.NewServiceError(messages.MissingPathParameter, "ParameterName", "dataset")
	}
	dataset, err := api.GetDatasetOption(value)
	if err != nil {
		return "", serviceerrors.FromValidation(err)
	}
	return dataset, nil
}

// HandleListRuns handles GET /api/v1/datasets/{dataset}/runs
func (h *Handlers) HandleListRuns(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	if !requireMethod(ctx, r, w, "GET") {
		return
	}
	dataset, err := datasetParameter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit = min(limit, maxLimit)
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	benchmarkID := firstQuery(r, "benchmark_id")

	ctx = ctx.With(constants.LOG_DATASET, dataset)
	list, err := h.storage.ListRuns(ctx, dataset, benchmarkID, limit, offset)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteJSON(list, constants.HTTPCodeOK)
}

// HandleGetRun handles GET /api/v1/datasets/{dataset}/runs/{run_id}
func (h *Handlers) HandleGetRun(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	if !requireMethod(ctx, r, w, "GET") {
		return
	}
	dataset, err := datasetParameter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	runID := r.PathValue("run_id")
	if runID == "" {
		writeError(ctx, w, serviceerrors.NewServiceError(messages.MissingPathParameter, "ParameterName", "run_id"))
		return
	}

	ctx = ctx.With(constants.LOG_DATASET, dataset, constants.LOG_RUN_ID, runID)
	result, err := h.storage.GetRunResult(ctx, dataset, runID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteJSON(result, constants.HTTPCodeOK)
}

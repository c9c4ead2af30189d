package sql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	se "github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/internal/storage/common"
	"github.com/xlml/bench-metrics/pkg/api"
)

const (
	runResourceType = "run"
	DefaultLimit    = 50
)

func checkDataset(dataset api.DatasetOption) error {
	if !dataset.IsValid() {
		return se.NewServiceError(messages.InvalidFieldValue, "Field", "dataset", "Value", dataset, "Allowed", api.DatasetOptions())
	}
	return nil
}

// #######################################################################
// Run result operations
// #######################################################################

// SaveRunResult stores the run result as a JSON entity in the runs table of
// its dataset, and one row per metric value in the metrics table.
func (s *SQLStorage) SaveRunResult(ctx *executioncontext.ExecutionContext, result *api.RunResult) error {
	if err := checkDataset(result.Dataset); err != nil {
		return err
	}
	rows := common.MetricRows(result)
	for _, row := range rows {
		if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			return se.NewServiceError(messages.InvalidFieldValue, "Field", "metric "+row.Metric, "Value", row.Value, "Allowed", "finite numbers")
		}
	}
	entityJSON, err := json.Marshal(result)
	if err != nil {
		return se.NewServiceError(messages.InternalServerError, "Error", err.Error())
	}

	return s.withTransaction(ctx.Ctx, "save run result", result.RunID, func(txn *sql.Tx) error {
		_, err := txn.ExecContext(ctx.Ctx, s.statements.InsertRun(result.Dataset),
			result.RunID, result.BenchmarkID, result.CreatedAt.UTC(), len(rows), string(entityJSON))
		if err != nil {
			ctx.Logger.Error("Failed to insert run", "error", err, "id", result.RunID)
			return se.WithRollback(se.NewServiceError(messages.DatabaseOperationFailed, "Type", runResourceType, "ResourceId", result.RunID, "Error", err.Error()))
		}

		insertMetric := s.statements.InsertMetric(result.Dataset)
		for _, row := range rows {
			dimensions, err := row.DimensionsJSON()
			if err != nil {
				return se.WithRollback(se.NewServiceError(messages.InternalServerError, "Error", err.Error()))
			}
			if _, err := txn.ExecContext(ctx.Ctx, insertMetric, result.RunID, string(row.Source), row.Metric, row.Value, dimensions); err != nil {
				ctx.Logger.Error("Failed to insert metric", "error", err, "id", result.RunID, "metric", row.Metric)
				return se.WithRollback(se.NewServiceError(messages.DatabaseOperationFailed, "Type", runResourceType, "ResourceId", result.RunID, "Error", err.Error()))
			}
		}

		ctx.Logger.Info("Saved run result", "id", result.RunID, "dataset", result.Dataset, "metric_count", len(rows))
		return nil
	})
}

func (s *SQLStorage) GetRunResult(ctx *executioncontext.ExecutionContext, dataset api.DatasetOption, runID string) (*api.RunResult, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}

	var entityJSON string
	err := s.pool.QueryRowContext(ctx.Ctx, s.statements.GetRun(dataset), runID).Scan(&entityJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, se.NewServiceError(messages.ResourceNotFound, "Type", runResourceType, "ResourceId", runID)
		}
		ctx.Logger.Error("Failed to get run", "error", err, "id", runID)
		return nil, se.NewServiceError(messages.DatabaseOperationFailed, "Type", runResourceType, "ResourceId", runID, "Error", err.Error())
	}

	var result api.RunResult
	if err := json.Unmarshal([]byte(entityJSON), &result); err != nil {
		ctx.Logger.Error("Failed to unmarshal run entity", "error", err, "id", runID)
		return nil, se.NewServiceError(messages.DatabaseOperationFailed, "Type", runResourceType, "ResourceId", runID, "Error", err.Error())
	}
	return &result, nil
}

// ListRuns returns the runs of a dataset, newest first. An empty benchmarkID
// lists all benchmarks.
func (s *SQLStorage) ListRuns(ctx *executioncontext.ExecutionContext, dataset api.DatasetOption, benchmarkID string, limit int, offset int) (*api.RunSummaryList, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	filter := benchmarkID != ""
	var args []any
	if filter {
		args = append(args, benchmarkID)
	}

	var totalCount int
	if err := s.pool.QueryRowContext(ctx.Ctx, s.statements.CountRuns(dataset, filter), args...).Scan(&totalCount); err != nil {
		ctx.Logger.Error("Failed to count runs", "error", err)
		return nil, se.NewServiceError(messages.QueryFailed, "Type", "runs", "Error", err.Error())
	}

	rows, err := s.pool.QueryContext(ctx.Ctx, s.statements.ListRuns(dataset, filter), append(args, limit, offset)...)
	if err != nil {
		ctx.Logger.Error("Failed to list runs", "error", err)
		return nil, se.NewServiceError(messages.QueryFailed, "Type", "runs", "Error", err.Error())
	}
	defer rows.Close()

	items := []api.RunSummary{}
	for rows.Next() {
		var (
			runID       string
			benchmark   string
			createdAt   time.Time
			metricCount int
		)
		if err := rows.Scan(&runID, &benchmark, &createdAt, &metricCount); err != nil {
			ctx.Logger.Error("Failed to scan run row", "error", err)
			return nil, se.NewServiceError(messages.DatabaseOperationFailed, "Type", runResourceType, "ResourceId", runID, "Error", err.Error())
		}
		items = append(items, api.RunSummary{
			RunID:       runID,
			BenchmarkID: benchmark,
			Dataset:     dataset,
			MetricCount: metricCount,
			CreatedAt:   createdAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		ctx.Logger.Error("Error iterating run rows", "error", err)
		return nil, se.NewServiceError(messages.QueryFailed, "Type", "runs", "Error", err.Error())
	}

	return &api.RunSummaryList{
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
		Items:      items,
	}, nil
}

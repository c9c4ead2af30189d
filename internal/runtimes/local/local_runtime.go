package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serialization"
	se "github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

// LocalRuntime keeps published runs as JSON files in a directory.
type LocalRuntime struct {
	logger   *slog.Logger
	ctx      context.Context
	validate *validator.Validate
	runsDir  string
}

func NewLocalRuntime(logger *slog.Logger, validate *validator.Validate, runsDir string) (abstractions.Runtime, error) {
	if runsDir == "" {
		return nil, fmt.Errorf("runs directory is required")
	}
	return &LocalRuntime{logger: logger, ctx: context.Background(), validate: validate, runsDir: runsDir}, nil
}

func (r *LocalRuntime) WithLogger(logger *slog.Logger) abstractions.Runtime {
	c := *r
	c.logger = logger
	return &c
}

func (r *LocalRuntime) WithContext(ctx context.Context) abstractions.Runtime {
	c := *r
	c.ctx = ctx
	return &c
}

func (r *LocalRuntime) runFile(benchmarkID string) (string, error) {
	if benchmarkID == "" || strings.ContainsAny(benchmarkID, `/\`) || benchmarkID == "." || benchmarkID == ".." {
		return "", se.NewServiceError(messages.InvalidFieldValue, "Field", "benchmark_id", "Value", benchmarkID, "Allowed", "a name without path separators")
	}
	return filepath.Join(r.runsDir, benchmarkID+".json"), nil
}

// PublishRun writes the run definition to <runs_dir>/<benchmark-id>.json.
// The file is written next to its final name and renamed into place.
func (r *LocalRuntime) PublishRun(run *api.BenchmarkRun) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run is required")
	}
	path, err := r.runFile(run.BenchmarkID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(api.DocumentOfRun(run), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run: %w", err)
	}
	if err := os.MkdirAll(r.runsDir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(r.runsDir, ".run-*.json")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	r.logger.Info("Published run",
		constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_PUBLISHED,
		constants.LOG_BENCHMARK_ID, run.BenchmarkID,
		constants.LOG_FILE, path,
	)
	return path, nil
}

func (r *LocalRuntime) FetchRun(benchmarkID string) (*api.BenchmarkRun, error) {
	path, err := r.runFile(benchmarkID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, se.NewServiceError(messages.ResourceNotFound, "Type", "run", "ResourceId", benchmarkID).WithCause(err)
		}
		return nil, err
	}
	ectx := executioncontext.NewExecutionContext(r.ctx, "", r.logger)
	return serialization.UnmarshalRun(r.validate, ectx, data)
}

func (r *LocalRuntime) Name() string {
	return "local"
}

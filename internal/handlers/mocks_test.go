package handlers_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/logging"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

type MockRequest struct {
	method     string
	uri        *url.URL
	headers    map[string]string
	pathValues map[string]string
}

func createMockRequest(method string, uri string, pathValues map[string]string) *MockRequest {
	parsed, _ := url.Parse(uri)
	return &MockRequest{method: method, uri: parsed, headers: map[string]string{}, pathValues: pathValues}
}

func (r *MockRequest) Method() string                     { return r.method }
func (r *MockRequest) Header(key string) string           { return r.headers[key] }
func (r *MockRequest) SetHeader(key string, value string) { r.headers[key] = value }
func (r *MockRequest) Path() string                       { return r.uri.Path }
func (r *MockRequest) PathValue(name string) string       { return r.pathValues[name] }
func (r *MockRequest) Query(key string) []string          { return r.uri.Query()[key] }

type MockResponseWrapper struct {
	recorder *httptest.ResponseRecorder
}

func (w MockResponseWrapper) Error(errorMessage string, code int, requestId string) {
	w.WriteJSON(map[string]any{"message": errorMessage, "code": code, "trace": requestId}, code)
}
func (w MockResponseWrapper) SetHeader(key string, value string) { w.recorder.Header().Set(key, value) }
func (w MockResponseWrapper) WriteJSON(v any, code int) {
	w.recorder.Header().Set("Content-Type", "application/json")
	w.recorder.WriteHeader(code)
	_ = json.NewEncoder(w.recorder).Encode(v)
}

func createExecutionContext() *executioncontext.ExecutionContext {
	return executioncontext.NewExecutionContext(context.Background(), "test-request", logging.NewNopLogger())
}

type fakeStorage struct {
	results map[string]*api.RunResult
	pingErr error
	listed  struct {
		dataset     api.DatasetOption
		benchmarkID string
		limit       int
		offset      int
	}
}

func (s *fakeStorage) GetDatasourceName() string { return "fake" }

func (s *fakeStorage) Ping(_ time.Duration) error { return s.pingErr }

func (s *fakeStorage) SaveRunResult(_ *executioncontext.ExecutionContext, result *api.RunResult) error {
	s.results[result.RunID] = result
	return nil
}

func (s *fakeStorage) GetRunResult(_ *executioncontext.ExecutionContext, dataset api.DatasetOption, runID string) (*api.RunResult, error) {
	if result, ok := s.results[runID]; ok && result.Dataset == dataset {
		return result, nil
	}
	return nil, serviceerrors.NewServiceError(messages.ResourceNotFound, "Type", "run", "ResourceId", runID)
}

func (s *fakeStorage) ListRuns(_ *executioncontext.ExecutionContext, dataset api.DatasetOption, benchmarkID string, limit int, offset int) (*api.RunSummaryList, error) {
	s.listed.dataset, s.listed.benchmarkID, s.listed.limit, s.listed.offset = dataset, benchmarkID, limit, offset
	items := []api.RunSummary{}
	for _, result := range s.results {
		if result.Dataset == dataset && (benchmarkID == "" || result.BenchmarkID == benchmarkID) {
			items = append(items, api.RunSummary{RunID: result.RunID, BenchmarkID: result.BenchmarkID, Dataset: dataset, CreatedAt: result.CreatedAt})
		}
	}
	return &api.RunSummaryList{TotalCount: len(items), Limit: limit, Offset: offset, Items: items}, nil
}

func (s *fakeStorage) Close() error { return nil }

type fakeRuntime struct {
	runs map[string]*api.BenchmarkRun
}

func (r *fakeRuntime) WithLogger(_ *slog.Logger) abstractions.Runtime     { return r }
func (r *fakeRuntime) WithContext(_ context.Context) abstractions.Runtime { return r }
func (r *fakeRuntime) Name() string                                       { return "fake" }

func (r *fakeRuntime) PublishRun(run *api.BenchmarkRun) (string, error) {
	r.runs[run.BenchmarkID] = run
	return run.BenchmarkID, nil
}

func (r *fakeRuntime) FetchRun(benchmarkID string) (*api.BenchmarkRun, error) {
	if run, ok := r.runs[benchmarkID]; ok {
		return run, nil
	}
	return nil, serviceerrors.NewServiceError(messages.ResourceNotFound, "Type", "run", "ResourceId", benchmarkID)
}

package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/cucumber/godog"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/logging"
	"github.com/xlml/bench-metrics/internal/runtimes/local"
	"github.com/xlml/bench-metrics/internal/storage/sql"
	"github.com/xlml/bench-metrics/internal/validation"
	"github.com/xlml/bench-metrics/pkg/api"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// testContext holds the state of one scenario
type testContext struct {
	dir      string
	storage  abstractions.Storage
	runtime  abstractions.Runtime
	server   *httptest.Server
	response *http.Response
	body     []byte
}

func (tc *testContext) reset() error {
	tc.cleanup()
	dir, err := os.MkdirTemp("", "bench-metrics-features-")
	if err != nil {
		return err
	}
	*tc = testContext{dir: dir}
	return nil
}

func (tc *testContext) cleanup() {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.storage != nil {
		_ = tc.storage.Close()
	}
	if tc.dir != "" {
		_ = os.RemoveAll(tc.dir)
	}
}

// InitializeScenario registers all step definitions
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &testContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.cleanup()
		*tc = testContext{}
		return ctx, nil
	})

	ctx.Step(`^the service is running with stored runs$`, tc.theServiceIsRunningWithStoredRuns)
	ctx.Step(`^the run "([^"]*)" is published$`, tc.theRunIsPublished)
	ctx.Step(`^I send a (GET|DELETE|POST) request to "([^"]*)"$`, tc.iSendRequest)
	ctx.Step(`^the response code should be (\d+)$`, tc.theResponseCodeShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, tc.theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, tc.theResponseFieldShouldContain)
}

func (tc *testContext) theServiceIsRunningWithStoredRuns(ctx context.Context) error {
	logger := logging.NewNopLogger()
	storage, err := sql.NewStorage(map[string]any{
		"driver": "sqlite",
		"url":    "file:" + filepath.Join(tc.dir, "features.db"),
	}, logger)
	if err != nil {
		return err
	}
	tc.storage = storage

	ectx := executioncontext.NewExecutionContext(ctx, "features", logger)
	base := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	for i, benchmarkID := range []string{"resnet", "bert"} {
		err := storage.SaveRunResult(ectx, &api.RunResult{
			RunID:       fmt.Sprintf("run-%d", i+1),
			BenchmarkID: benchmarkID,
			Dataset:     api.DatasetXLML,
			Summary:     []api.AggregatedMetric{{Tag: "loss", Value: 0.25, Strategy: api.AggregationMedian, SampleCount: 5}},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			return err
		}
	}

	validate, err := validation.NewValidator()
	if err != nil {
		return err
	}
	tc.runtime, err = local.NewLocalRuntime(logger, validate, filepath.Join(tc.dir, "runs"))
	if err != nil {
		return err
	}

	cfg := &config.Config{Service: &config.ServiceConfig{Name: "bench-metrics", Listen: ":0"}}
	s, err := NewServer(logger, cfg, storage, validate, tc.runtime)
	if err != nil {
		return err
	}
	tc.server = httptest.NewServer(s.httpServer.Handler)
	return nil
}

func (tc *testContext) theRunIsPublished(benchmarkID string) error {
	jsonLines, err := api.NewJSONLinesConfig("metrics.jsonl")
	if err != nil {
		return err
	}
	metricConfig, err := api.NewMetricConfig(api.WithJSONLines(jsonLines))
	if err != nil {
		return err
	}
	run, err := api.NewBenchmarkRun(benchmarkID, api.DatasetBenchmark, "gs://bucket/"+benchmarkID, metricConfig)
	if err != nil {
		return err
	}
	_, err = tc.runtime.PublishRun(run)
	return err
}

func (tc *testContext) iSendRequest(method, path string) error {
	req, err := http.NewRequest(method, tc.server.URL+path, nil)
	if err != nil {
		return err
	}
	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.response = resp
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *testContext) theResponseCodeShouldBe(code int) error {
	if tc.response == nil {
		return fmt.Errorf("no request was sent")
	}
	if tc.response.StatusCode != code {
		return fmt.Errorf("expected status code %d, got %d: %s", code, tc.response.StatusCode, string(tc.body))
	}
	return nil
}

func (tc *testContext) responseField(path string) (string, error) {
	parsed, err := gabs.ParseJSON(tc.body)
	if err != nil {
		return "", fmt.Errorf("response is not JSON: %w", err)
	}
	if !parsed.ExistsP(path) {
		return "", fmt.Errorf("response has no field %q: %s", path, string(tc.body))
	}
	return fmt.Sprint(parsed.Path(path).Data()), nil
}

func (tc *testContext) theResponseFieldShouldBe(path, expected string) error {
	value, err := tc.responseField(path)
	if err != nil {
		return err
	}
	if value != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, value)
	}
	return nil
}

func (tc *testContext) theResponseFieldShouldContain(path, expected string) error {
	value, err := tc.responseField(path)
	if err != nil {
		return err
	}
	if !strings.Contains(value, expected) {
		return fmt.Errorf("expected %s to contain %q, got %q", path, expected, value)
	}
	return nil
}

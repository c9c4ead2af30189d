package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlml/bench-metrics/internal/tfevents"
	"github.com/xlml/bench-metrics/pkg/api"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const definition = `
benchmark_id: resnet-v4-8
dataset: xlml_dataset
metric_config:
  json_lines:
    file_location: metrics.jsonl
  tensorboard_summary:
    file_location: tensorboard/events\.out\.tfevents\..*
    aggregation_strategy: average
    include_tag_patterns: ["loss*"]
    use_regex_file_location: true
  use_runtime_generated_gcs_folder: true
`

func TestFolderCommand(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 10, 18, 6, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	out, err := runCommand(t, "folder", "--base", "gs://bucket/", "--subfolder", "solutions_team", "--benchmark-id", "resnet")
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/solutions_team/resnet-20241018063000\n", out)

	_, err = runCommand(t, "folder", "--base", "gs://bucket")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, filepath.Join(dir, "valid.yaml"), definition)
	invalid := writeFile(t, filepath.Join(dir, "invalid.yaml"), "benchmark_id: resnet\ndataset: nightly\n")

	out, err := runCommand(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "OK "+valid+" (1 runs)")

	out, err = runCommand(t, "validate", valid, invalid)
	require.ErrorIs(t, err, errInvalidDefinitions)
	assert.Contains(t, out, "OK "+valid)
	assert.Contains(t, out, "INVALID "+invalid)
}

func TestLocateCommand(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "run.yaml"), definition)

	out, err := runCommand(t, "locate", path, "--folder", "gs://bucket/team/resnet-v4-8-20241018063000")
	require.NoError(t, err)

	var located []locatedRun
	require.NoError(t, json.Unmarshal([]byte(out), &located))
	require.Len(t, located, 1)
	assert.Equal(t, "gs://bucket/team/resnet-v4-8-20241018063000/metrics.jsonl", located[0].JSONLines)
	assert.True(t, located[0].SummaryIsRegex)

	_, err = runCommand(t, "locate", path)
	assert.Error(t, err, "the runtime generated folder needs a folder")
}

func writeRunFiles(t *testing.T, folder string) {
	t.Helper()
	writeFile(t, filepath.Join(folder, "metrics.jsonl"), `{"metrics": {"throughput": 410.5}, "dimensions": {"accelerator": "v4-8"}}`+"\n")

	for i, name := range []string{"events.out.tfevents.1000.host", "events.out.tfevents.2000.host"} {
		var buf bytes.Buffer
		writer := tfevents.NewWriter(&buf)
		for step := int64(1); step <= 3; step++ {
			require.NoError(t, writer.WriteScalar("loss", step, 0, float32(i+1)*float32(step)))
			require.NoError(t, writer.WriteScalar("accuracy", step, 0, 0.5))
		}
		writeFile(t, filepath.Join(folder, "tensorboard", name), buf.String())
	}
}

func TestIngestCommand(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "output", "resnet-v4-8-20241018063000")
	writeRunFiles(t, folder)
	path := writeFile(t, filepath.Join(dir, "run.yaml"), definition)
	configFile := writeFile(t, filepath.Join(dir, "config.yaml"), `
database:
  sql:
    local:
      enabled: true
      driver: sqlite
      url: file:`+filepath.Join(dir, "results.db")+`
`)
	textfile := filepath.Join(dir, "bench_metrics.prom")
	t.Setenv("BENCH_METRICS_METRICS_TEXTFILE_PATH", textfile)

	out, err := runCommand(t, "ingest", path, "--local", "--folder", folder, "--store", "--config", configFile)
	require.NoError(t, err)

	var results []api.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	result := results[0]
	require.Len(t, result.JSONLines, 1)
	assert.Equal(t, 410.5, result.JSONLines[0].Metrics["throughput"])
	require.Len(t, result.Summary, 1, "accuracy is filtered out")
	assert.Equal(t, "loss", result.Summary[0].Tag)
	assert.InDelta(t, 4.0, result.Summary[0].Value, 1e-6, "the newest event file is read")

	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `bench_metrics_ingest_runs_total{outcome="ingested"} 1`)
}

func TestIngestCommandMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "run.yaml"), definition)

	_, err := runCommand(t, "ingest", path, "--local", "--folder", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPublishCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "run.yaml"), definition)
	runsDir := filepath.Join(dir, "runs")

	out, err := runCommand(t, "publish", path, "--local", "--runs-dir", runsDir)
	require.NoError(t, err)
	assert.Equal(t, "resnet-v4-8\t"+filepath.Join(runsDir, "resnet-v4-8.json")+"\n", out)
	assert.FileExists(t, filepath.Join(runsDir, "resnet-v4-8.json"))
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "run.yaml"), definition)
	writeFile(t, filepath.Join(dir, "other.yaml"), definition)

	watcher, err := newFileWatcher([]string{path})
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- watcher.run(ctx, func(p string) { changed <- p }, func(err error) { t.Log(err) })
	}()

	writeFile(t, filepath.Join(dir, "other.yaml"), "ignored")
	writeFile(t, path, definition+"\n")

	select {
	case got := <-changed:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRunLogsFailure(t *testing.T) {
	var stderr bytes.Buffer
	code := run([]string{"folder", "--base", "gs://bucket", "--log-level", "error"}, &stderr)
	assert.Equal(t, 1, code)

	lines := bytes.Split(bytes.TrimSpace(stderr.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Command failed", record["msg"])
	assert.Equal(t, "bench-metrics", record["command"])
	assert.NotEmpty(t, record["error"])
	assert.NotContains(t, stderr.String(), "Error: ")
}

func TestRunSucceeds(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"folder", "--base", "gs://bucket/", "--benchmark-id", "resnet", "--log-level", "error"}, &stderr))
	assert.Empty(t, stderr.String())
}

package api

import (
	"strings"
	"time"
)

// BenchmarkRun is the definition of one benchmark run as handed from the
// benchmark definition code to the metric ingestion pipeline.
type BenchmarkRun struct {
	BenchmarkID string
	Dataset     DatasetOption
	// OutputFolder is the runtime generated folder. Only consulted when the
	// metric config uses it.
	OutputFolder string
	MetricConfig MetricConfig
}

func NewBenchmarkRun(benchmarkID string, dataset DatasetOption, outputFolder string, metricConfig MetricConfig) (*BenchmarkRun, error) {
	if strings.TrimSpace(benchmarkID) == "" {
		return nil, missingField("benchmark_id")
	}
	if dataset == "" {
		return nil, missingField("dataset")
	}
	if !dataset.IsValid() {
		return nil, invalidValue("dataset", string(dataset), DatasetOptions())
	}
	return &BenchmarkRun{
		BenchmarkID:  benchmarkID,
		Dataset:      dataset,
		OutputFolder: outputFolder,
		MetricConfig: metricConfig,
	}, nil
}

// Locations resolves the metric locations of the run against its output folder.
func (r *BenchmarkRun) Locations() (Locations, error) {
	return r.MetricConfig.ResolveLocations(r.OutputFolder)
}

// MetricRecord is one JSON Lines record.
type MetricRecord struct {
	Metrics    map[string]float64 `json:"metrics"`
	Dimensions map[string]string  `json:"dimensions,omitempty"`
}

// AggregatedMetric is the reduction of the samples of one TensorBoard tag.
type AggregatedMetric struct {
	Tag         string              `json:"tag"`
	Value       float64             `json:"value"`
	Strategy    AggregationStrategy `json:"strategy"`
	SampleCount int                 `json:"sample_count"`
}

// RunResult is what the ingestion pipeline produced for one run.
type RunResult struct {
	RunID           string             `json:"run_id"`
	BenchmarkID     string             `json:"benchmark_id"`
	Dataset         DatasetOption      `json:"dataset"`
	Locations       Locations          `json:"-"`
	JSONLines       []MetricRecord     `json:"json_lines,omitempty"`
	Summary         []AggregatedMetric `json:"tensorboard_summary,omitempty"`
	ProfileFiles    []string           `json:"profile_files,omitempty"`
	Profile         *ProfileMetrics    `json:"profile,omitempty"`
	NothingToIngest bool               `json:"nothing_to_ingest,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// RunSummary is a stored run without its metric rows.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	BenchmarkID string        `json:"benchmark_id"`
	Dataset     DatasetOption `json:"dataset"`
	MetricCount int           `json:"metric_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

type RunSummaryList struct {
	TotalCount int          `json:"total_count"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	Items      []RunSummary `json:"items"`
}

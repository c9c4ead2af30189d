package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/internal/storage/common"
	"github.com/xlml/bench-metrics/internal/tfevents"
	"github.com/xlml/bench-metrics/pkg/api"
)

const (
	outcomeIngested        = "ingested"
	outcomeNothingToIngest = "nothing_to_ingest"
	outcomeFailed          = "failed"
)

// ProfileConverter turns profiler trace files into metrics. Trace conversion
// is done by external tooling; the pipeline only discovers the files.
type ProfileConverter interface {
	Convert(ctx context.Context, traces []string) (map[string]float64, error)
}

type Pipeline struct {
	store     abstractions.ObjectStore
	locator   *Locator
	storage   abstractions.Storage
	converter ProfileConverter
	metrics   *Metrics
	now       func() time.Time
}

type Option func(*Pipeline)

func WithStorage(storage abstractions.Storage) Option {
	return func(p *Pipeline) { p.storage = storage }
}

func WithProfileConverter(converter ProfileConverter) Option {
	return func(p *Pipeline) { p.converter = converter }
}

func WithMetrics(metrics *Metrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(store abstractions.ObjectStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		locator: NewLocator(store),
		metrics: NewMetrics(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads every metric source of run and, when storage is configured,
// persists the result.
func (p *Pipeline) Run(ectx *executioncontext.ExecutionContext, run *api.BenchmarkRun) (*api.RunResult, error) {
	result := &api.RunResult{
		RunID:       uuid.NewString(),
		BenchmarkID: run.BenchmarkID,
		Dataset:     run.Dataset,
		CreatedAt:   p.now().UTC(),
	}
	logger := ectx.Logger.With(constants.LOG_RUN_ID, result.RunID, constants.LOG_BENCHMARK_ID, run.BenchmarkID, constants.LOG_DATASET, run.Dataset)
	timer := time.Now()
	defer func() { p.metrics.RunDuration.Observe(time.Since(timer).Seconds()) }()

	outcome := outcomeIngested
	if run.MetricConfig.IsEmpty() {
		result.NothingToIngest = true
		outcome = outcomeNothingToIngest
		logger.Info("No metric sources configured", constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_NOTHING_TO_INGEST)
	} else if err := p.ingest(ectx.Ctx, logger, run, result); err != nil {
		p.metrics.Runs.WithLabelValues(outcomeFailed).Inc()
		logger.Error("Ingestion failed", constants.LOG_ERROR, err.Error(), constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_FAILED)
		return nil, err
	}

	if p.storage != nil {
		if err := p.storage.SaveRunResult(ectx.With(constants.LOG_RUN_ID, result.RunID), result); err != nil {
			p.metrics.Runs.WithLabelValues(outcomeFailed).Inc()
			logger.Error("Saving the run result failed", constants.LOG_ERROR, err.Error(), constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_FAILED)
			return nil, err
		}
	}
	p.metrics.Runs.WithLabelValues(outcome).Inc()
	if result.NothingToIngest {
		return result, nil
	}

	count := MetricCount(result)
	p.metrics.MetricsWritten.WithLabelValues(string(run.Dataset)).Add(float64(count))
	logger.Info("Run ingested", constants.LOG_COUNT, count, constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_INGESTED)
	return result, nil
}

func (p *Pipeline) ingest(ctx context.Context, logger *slog.Logger, run *api.BenchmarkRun, result *api.RunResult) error {
	locations, err := run.Locations()
	if err != nil {
		return serviceerrors.FromValidation(err)
	}
	result.Locations = locations

	if _, ok := run.MetricConfig.JSONLines(); ok {
		records, err := readSource(ctx, p.store, api.FormatJSONLines, locations.JSONLines, ReadJSONLines)
		if err != nil {
			return err
		}
		p.metrics.FilesRead.WithLabelValues(string(api.FormatJSONLines)).Inc()
		result.JSONLines = records
		logger.Info("Read JSON Lines", constants.LOG_LOCATION, locations.JSONLines, constants.LOG_COUNT, len(records))
	}

	if summary, ok := run.MetricConfig.TensorBoardSummary(); ok {
		file, err := p.locator.ResolveSummary(ctx, locations.TensorBoardSummary, locations.SummaryIsRegex)
		if err != nil {
			return sourceError(api.FormatTensorBoardSummary, locations.TensorBoardSummary, err)
		}
		scalars, err := readSource(ctx, p.store, api.FormatTensorBoardSummary, file, tfevents.ReadScalars)
		if err != nil {
			return err
		}
		p.metrics.FilesRead.WithLabelValues(string(api.FormatTensorBoardSummary)).Inc()
		p.metrics.Samples.Add(float64(len(scalars)))
		scalars, dropped := DropNonFinite(scalars)
		if dropped > 0 {
			p.metrics.DroppedSamples.Add(float64(dropped))
			logger.Warn("Dropped non-finite summary samples", constants.LOG_FILE, file, constants.LOG_COUNT, dropped)
		}
		aggregated, err := AggregateSummary(summary, scalars)
		if err != nil {
			return sourceError(api.FormatTensorBoardSummary, file, err)
		}
		result.Summary = aggregated
		logger.Info("Read TensorBoard summary", constants.LOG_FILE, file, constants.LOG_COUNT, len(aggregated))
	}

	if _, ok := run.MetricConfig.Profile(); ok {
		traces, err := p.locator.DiscoverProfiles(ctx, locations.Profile)
		if err != nil {
			return sourceError(api.FormatProfile, locations.Profile, err)
		}
		result.ProfileFiles = traces
		p.metrics.FilesRead.WithLabelValues(string(api.FormatProfile)).Add(float64(len(traces)))
		if p.converter != nil && len(traces) > 0 {
			converted, err := p.converter.Convert(ctx, traces)
			if err != nil {
				return sourceError(api.FormatProfile, locations.Profile, err)
			}
			profile := api.NewProfileMetrics(locations.Profile, converted)
			result.Profile = &profile
		}
		logger.Info("Discovered profile traces", constants.LOG_LOCATION, locations.Profile, constants.LOG_COUNT, len(traces))
	}
	return nil
}

func readSource[T any](ctx context.Context, store abstractions.ObjectStore, format api.FormatType, location string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	r, err := store.Open(ctx, location)
	if err != nil {
		return zero, sourceError(format, location, err)
	}
	defer r.Close()
	value, err := read(r)
	if err != nil {
		return zero, sourceError(format, location, err)
	}
	return value, nil
}

func sourceError(format api.FormatType, location string, err error) error {
	if errors.Is(err, abstractions.ErrObjectNotFound) {
		return serviceerrors.NewServiceError(messages.MetricSourceNotFound, "Format", format, "Location", location).WithCause(err)
	}
	return serviceerrors.NewServiceError(messages.MetricSourceReadFailed, "Format", format, "Location", location, "Error", err.Error()).WithCause(err)
}

// MetricCount is the number of metric values in a result.
func MetricCount(result *api.RunResult) int {
	return len(common.MetricRows(result))
}

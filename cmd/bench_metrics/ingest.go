package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/ingest"
	"github.com/xlml/bench-metrics/internal/objectstore"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/internal/storage"
	"github.com/xlml/bench-metrics/pkg/api"
)

func (a *app) newIngestCmd() *cobra.Command {
	var folder string
	var store bool
	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Read the metric files of the runs in a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ectx := a.executionContext(cmd.Context())
			runs, err := a.loadRuns(ectx, args[0])
			if err != nil {
				return err
			}

			objectStore, err := objectstore.New(ectx.Ctx, a.config.ObjectStore, a.config.Service.LocalMode)
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			opts := []ingest.Option{ingest.WithMetrics(ingest.NewMetrics(registry))}
			if store {
				resultStorage, err := storage.NewStorage(a.config, ectx.Logger)
				if err != nil {
					return err
				}
				defer resultStorage.Close()
				opts = append(opts, ingest.WithStorage(resultStorage))
			}
			pipeline := ingest.NewPipeline(objectStore, opts...)

			results := make([]*api.RunResult, 0, len(runs))
			var runErr error
			for _, run := range runs {
				if folder != "" {
					if run, err = withOutputFolder(run, folder); err != nil {
						runErr = err
						break
					}
				}
				result, err := pipeline.Run(ectx, run)
				if err != nil {
					runErr = err
					break
				}
				results = append(results, result)
			}

			a.writeTextfile(registry)
			if runErr != nil {
				return runErr
			}
			return writeJSON(cmd, results)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "output folder of the runs, overrides output_folder")
	cmd.Flags().BoolVar(&store, "store", false, "save the results to the configured database")
	return cmd
}

func withOutputFolder(run *api.BenchmarkRun, folder string) (*api.BenchmarkRun, error) {
	run, err := api.NewBenchmarkRun(run.BenchmarkID, run.Dataset, folder, run.MetricConfig)
	if err != nil {
		return nil, serviceerrors.FromValidation(err)
	}
	return run, nil
}

// writeTextfile writes the ingestion metrics for the node exporter textfile
// collector when a path is configured.
func (a *app) writeTextfile(registry *prometheus.Registry) {
	if a.config.Metrics == nil || a.config.Metrics.TextfilePath == "" {
		return
	}
	if err := prometheus.WriteToTextfile(a.config.Metrics.TextfilePath, registry); err != nil {
		a.logger.Error("Failed to write metrics textfile", constants.LOG_FILE, a.config.Metrics.TextfilePath, constants.LOG_ERROR, err)
	}
}

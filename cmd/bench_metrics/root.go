package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/logging"
	"github.com/xlml/bench-metrics/internal/serialization"
	"github.com/xlml/bench-metrics/internal/validation"
	"github.com/xlml/bench-metrics/pkg/api"
)

var now = time.Now

// app is the state shared by the commands once the configuration is loaded.
type app struct {
	configFile string
	config     *config.Config
	logger     *slog.Logger
	validate   *validator.Validate
	sync       func()
}

func newRootCmd() *cobra.Command {
	a := &app{sync: func() {}}
	root := &cobra.Command{
		Use:           "bench-metrics",
		Short:         "Describe, locate and ingest the metrics of benchmark runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (YAML)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("local", false, "use the local runtime and local files only")
	flags.String("runs-dir", "", "directory of the local runtime")
	flags.String("namespace", "", "namespace of the Kubernetes runtime")

	root.AddCommand(
		a.newValidateCmd(),
		a.newLocateCmd(),
		a.newFolderCmd(),
		a.newPublishCmd(),
		a.newIngestCmd(),
		a.newServeCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags(), a.configFile)
	if err != nil {
		return err
	}
	logger, sync, err := logging.NewLogger(cfg.Logging, cfg.Service.Name)
	if err != nil {
		return err
	}
	validate, err := validation.NewValidator()
	if err != nil {
		return err
	}
	a.config, a.logger, a.validate, a.sync = cfg, logger.With("command", cmd.Name()), validate, sync
	return nil
}

func (a *app) executionContext(ctx context.Context) *executioncontext.ExecutionContext {
	requestID := uuid.NewString()
	return executioncontext.NewExecutionContext(ctx, requestID, a.logger.With(constants.LOG_REQUEST_ID, requestID))
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// loadRuns reads a definition file holding one or more runs.
func (a *app) loadRuns(ectx *executioncontext.ExecutionContext, path string) ([]*api.BenchmarkRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	runs, err := serialization.UnmarshalYAML(a.validate, ectx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return runs, nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/cmd/bench_metrics/server"
	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/runtimes"
	"github.com/xlml/bench-metrics/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored run results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resultStorage, err := storage.NewStorage(a.config, a.logger)
			if err != nil {
				return err
			}
			defer resultStorage.Close()

			var runtime abstractions.Runtime
			if runtime, err = runtimes.NewRuntime(a.logger, a.validate, a.config); err != nil {
				a.logger.Warn("No runtime available, published benchmarks are not served", constants.LOG_ERROR, err)
				runtime = nil
			}

			srv, err := server.NewServer(a.logger, a.config, resultStorage, a.validate, runtime)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() { errs <- srv.Start() }()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("listen", "", "address the server listens on")
	return cmd
}

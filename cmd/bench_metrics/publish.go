package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/internal/runtimes"
)

func (a *app) newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish FILE",
		Short: "Hand the runs of a definition file to the runtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ectx := a.executionContext(cmd.Context())
			runs, err := a.loadRuns(ectx, args[0])
			if err != nil {
				return err
			}
			runtime, err := runtimes.NewRuntime(ectx.Logger, a.validate, a.config)
			if err != nil {
				return err
			}
			runtime = runtime.WithContext(ectx.Ctx)
			for _, run := range runs {
				target, err := runtime.PublishRun(run)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", run.BenchmarkID, target)
			}
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/internal/ingest"
	"github.com/xlml/bench-metrics/internal/objectstore"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

type locatedRun struct {
	BenchmarkID             string   `json:"benchmark_id"`
	Folder                  string   `json:"folder,omitempty"`
	JSONLines               string   `json:"json_lines,omitempty"`
	TensorBoardSummary      string   `json:"tensorboard_summary,omitempty"`
	SummaryIsRegex          bool     `json:"summary_is_regex,omitempty"`
	Profile                 string   `json:"profile,omitempty"`
	ProfileDiscoveryPattern string   `json:"profile_discovery_pattern,omitempty"`
	ResolvedSummary         string   `json:"resolved_tensorboard_summary,omitempty"`
	ProfileFiles            []string `json:"profile_files,omitempty"`
}

func (a *app) newLocateCmd() *cobra.Command {
	var folder string
	var resolve bool
	cmd := &cobra.Command{
		Use:   "locate FILE",
		Short: "Print the effective metric file locations of the runs in a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ectx := a.executionContext(cmd.Context())
			runs, err := a.loadRuns(ectx, args[0])
			if err != nil {
				return err
			}

			var locator *ingest.Locator
			if resolve {
				store, err := objectstore.New(ectx.Ctx, a.config.ObjectStore, a.config.Service.LocalMode)
				if err != nil {
					return err
				}
				locator = ingest.NewLocator(store)
			}

			located := make([]locatedRun, 0, len(runs))
			for _, run := range runs {
				runFolder := folder
				if runFolder == "" {
					runFolder = run.OutputFolder
				}
				locations, err := run.MetricConfig.ResolveLocations(runFolder)
				if err != nil {
					return serviceerrors.FromValidation(err)
				}
				entry := locatedRun{
					BenchmarkID:        run.BenchmarkID,
					Folder:             runFolder,
					JSONLines:          locations.JSONLines,
					TensorBoardSummary: locations.TensorBoardSummary,
					SummaryIsRegex:     locations.SummaryIsRegex,
					Profile:            locations.Profile,
				}
				if locations.Profile != "" {
					entry.ProfileDiscoveryPattern = api.ProfileDiscoveryPattern(locations.Profile)
				}
				if locator != nil {
					if locations.TensorBoardSummary != "" {
						if entry.ResolvedSummary, err = locator.ResolveSummary(ectx.Ctx, locations.TensorBoardSummary, locations.SummaryIsRegex); err != nil {
							return err
						}
					}
					if locations.Profile != "" {
						if entry.ProfileFiles, err = locator.DiscoverProfiles(ectx.Ctx, locations.Profile); err != nil {
							return err
						}
					}
				}
				located = append(located, entry)
			}
			return writeJSON(cmd, located)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "output folder of the run, overrides output_folder")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "list the object store to resolve regex and profile locations")
	return cmd
}

func (a *app) newFolderCmd() *cobra.Command {
	var base, subfolder, benchmarkID string
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Generate the timestamped output folder of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := api.GenerateFolderLocation(base, subfolder, benchmarkID, now())
			if err != nil {
				return serviceerrors.FromValidation(err)
			}
			_, err = cmd.OutOrStdout().Write([]byte(folder + "\n"))
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "base directory, e.g. gs://bucket")
	cmd.Flags().StringVar(&subfolder, "subfolder", "", "optional subfolder beneath the base directory")
	cmd.Flags().StringVar(&benchmarkID, "benchmark-id", "", "benchmark id")
	return cmd
}

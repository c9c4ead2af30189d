package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/xlml/bench-metrics/internal/constants"
)

var errInvalidDefinitions = errors.New("invalid benchmark run definitions")

func (a *app) newValidateCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate benchmark run definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valid := true
			for _, path := range args {
				valid = a.validateFile(cmd, path) && valid
			}
			if !watch {
				if !valid {
					return errInvalidDefinitions
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			watcher, err := newFileWatcher(args)
			if err != nil {
				return err
			}
			defer watcher.Close()
			a.logger.Info("Watching definition files", constants.LOG_COUNT, len(args))
			return watcher.run(ctx, func(path string) { a.validateFile(cmd, path) }, func(err error) {
				a.logger.Error("Watcher error", constants.LOG_ERROR, err)
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "validate again whenever a file changes")
	return cmd
}

// validateFile reports the outcome for one file and returns whether it is valid.
func (a *app) validateFile(cmd *cobra.Command, path string) bool {
	ectx := a.executionContext(cmd.Context()).With(constants.LOG_FILE, path)
	runs, err := a.loadRuns(ectx, path)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "INVALID %s\n", err)
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%d runs)\n", path, len(runs))
	return true
}

// fileWatcher reports writes to a fixed set of files. The parent directories
// are watched so that editors replacing a file by rename are noticed.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string
}

func newFileWatcher(paths []string) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	files := map[string]string{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		files[abs] = path
	}
	for _, dir := range lo.Uniq(lo.Map(lo.Keys(files), func(f string, _ int) string { return filepath.Dir(f) })) {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return &fileWatcher{watcher: watcher, files: files}, nil
}

func (w *fileWatcher) run(ctx context.Context, onChange func(path string), onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if path, watched := w.files[filepath.Clean(event.Name)]; watched {
				onChange(path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}

func (w *fileWatcher) Close() error {
	return w.watcher.Close()
}

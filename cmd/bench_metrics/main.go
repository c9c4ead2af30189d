package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/xlml/bench-metrics/internal/constants"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the root command and logs a failure as one structured record.
func run(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		logger := slog.New(slog.NewJSONHandler(stderr, nil))
		logger.Error("Command failed", "command", root.Name(), constants.LOG_ERROR, err.Error())
		return 1
	}
	return 0
}

package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/pkg/api"
)

// Locator turns resolved locations into the concrete objects to read.
type Locator struct {
	store abstractions.ObjectStore
}

func NewLocator(store abstractions.ObjectStore) *Locator {
	return &Locator{store: store}
}

// ResolveSummary returns the event file to read. A regex location is matched
// against the objects beneath its literal prefix and the lexicographically
// last full match wins, which is the newest file for timestamped event files.
func (l *Locator) ResolveSummary(ctx context.Context, location string, isRegex bool) (string, error) {
	if !isRegex {
		return location, nil
	}
	unanchored, err := regexp.Compile(location)
	if err != nil {
		return "", fmt.Errorf("invalid summary location %q: %w", location, err)
	}
	prefix, _ := unanchored.LiteralPrefix()
	re := regexp.MustCompile(`^(?:` + location + `)$`)
	candidates, err := l.store.List(ctx, prefix)
	if err != nil {
		return "", err
	}
	matches := lo.Filter(candidates, func(c string, _ int) bool { return re.MatchString(c) })
	if len(matches) == 0 {
		return "", fmt.Errorf("no object matches %q: %w", location, abstractions.ErrObjectNotFound)
	}
	return lo.Max(matches), nil
}

// DiscoverProfiles lists the trace files one directory below location.
func (l *Locator) DiscoverProfiles(ctx context.Context, location string) ([]string, error) {
	prefix := strings.TrimSuffix(location, "/") + "/"
	candidates, err := l.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return lo.Filter(candidates, func(c string, _ int) bool {
		return api.IsProfileTrace(strings.TrimPrefix(c, prefix))
	}), nil
}

package ingest

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/xlml/bench-metrics/internal/tfevents"
	"github.com/xlml/bench-metrics/pkg/api"
)

var ErrNoSamples = errors.New("no samples to aggregate")

// DropNonFinite removes NaN and infinite samples, which cannot be aggregated
// or stored. It returns the kept samples in order and the number dropped.
func DropNonFinite(samples []tfevents.Scalar) ([]tfevents.Scalar, int) {
	kept := lo.Filter(samples, func(s tfevents.Scalar, _ int) bool {
		return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
	})
	return kept, len(samples) - len(kept)
}

// Aggregate reduces the samples of one tag. Samples are ordered by step
// first, so last is the value of the highest step.
func Aggregate(strategy api.AggregationStrategy, samples []tfevents.Scalar) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	ordered := slices.Clone(samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Step < ordered[j].Step })
	values := lo.Map(ordered, func(s tfevents.Scalar, _ int) float64 { return s.Value })

	switch strategy {
	case api.AggregationLast:
		return values[len(values)-1], nil
	case api.AggregationAverage:
		return lo.Sum(values) / float64(len(values)), nil
	case api.AggregationMedian:
		slices.Sort(values)
		middle := len(values) / 2
		if len(values)%2 == 1 {
			return values[middle], nil
		}
		return (values[middle-1] + values[middle]) / 2, nil
	default:
		return 0, fmt.Errorf("unsupported aggregation strategy %q", strategy)
	}
}

// AggregateSummary applies the tag filter of cfg and aggregates each kept tag
// with its strategy. The result is ordered by tag.
func AggregateSummary(cfg api.SummaryConfig, scalars []tfevents.Scalar) ([]api.AggregatedMetric, error) {
	byTag := lo.GroupBy(
		lo.Filter(scalars, func(s tfevents.Scalar, _ int) bool { return cfg.IncludesTag(s.Tag) }),
		func(s tfevents.Scalar) string { return s.Tag },
	)
	tags := lo.Keys(byTag)
	slices.Sort(tags)

	aggregated := make([]api.AggregatedMetric, 0, len(tags))
	for _, tag := range tags {
		value, err := Aggregate(cfg.AggregationStrategy(), byTag[tag])
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", tag, err)
		}
		aggregated = append(aggregated, api.AggregatedMetric{
			Tag:         tag,
			Value:       value,
			Strategy:    cfg.AggregationStrategy(),
			SampleCount: len(byTag[tag]),
		})
	}
	return aggregated, nil
}

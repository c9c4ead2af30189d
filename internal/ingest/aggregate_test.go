package ingest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlml/bench-metrics/internal/tfevents"
	"github.com/xlml/bench-metrics/pkg/api"
)

func scalars(tag string, values map[int64]float64) []tfevents.Scalar {
	var out []tfevents.Scalar
	for step, value := range values {
		out = append(out, tfevents.Scalar{Tag: tag, Step: step, Value: value})
	}
	return out
}

func TestAggregate(t *testing.T) {
	// map iteration order shuffles the input
	odd := scalars("loss", map[int64]float64{1: 4, 2: 1, 3: 3})
	even := scalars("loss", map[int64]float64{1: 4, 2: 1, 3: 3, 4: 10})

	tests := []struct {
		name     string
		strategy api.AggregationStrategy
		samples  []tfevents.Scalar
		expected float64
	}{
		{"last is the highest step", api.AggregationLast, odd, 3},
		{"average", api.AggregationAverage, even, 4.5},
		{"median odd", api.AggregationMedian, odd, 3},
		{"median even", api.AggregationMedian, even, 3.5},
		{"single sample", api.AggregationMedian, scalars("x", map[int64]float64{7: 2}), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Aggregate(tt.strategy, tt.samples)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, value, 1e-9)
		})
	}

	t.Run("repeated step keeps file order", func(t *testing.T) {
		value, err := Aggregate(api.AggregationLast, []tfevents.Scalar{
			{Tag: "loss", Step: 5, Value: 1},
			{Tag: "loss", Step: 5, Value: 2},
			{Tag: "loss", Step: 1, Value: 9},
		})
		require.NoError(t, err)
		assert.Equal(t, 2.0, value)
	})

	t.Run("no samples", func(t *testing.T) {
		_, err := Aggregate(api.AggregationLast, nil)
		assert.ErrorIs(t, err, ErrNoSamples)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := Aggregate(api.AggregationStrategy("sum"), odd)
		assert.Error(t, err)
	})
}

func TestAggregateSummary(t *testing.T) {
	cfg, err := api.NewSummaryConfig("tb", api.AggregationAverage,
		api.WithIncludeTagPatterns("loss*", "accuracy"),
		api.WithExcludeTagPatterns("loss_raw"),
	)
	require.NoError(t, err)

	input := []tfevents.Scalar{
		{Tag: "loss_avg", Step: 1, Value: 1},
		{Tag: "loss_avg", Step: 2, Value: 3},
		{Tag: "loss_raw", Step: 1, Value: 100},
		{Tag: "accuracy", Step: 1, Value: 0.5},
		{Tag: "learning_rate", Step: 1, Value: 0.01},
	}
	aggregated, err := AggregateSummary(cfg, input)
	require.NoError(t, err)
	assert.Equal(t, []api.AggregatedMetric{
		{Tag: "accuracy", Value: 0.5, Strategy: api.AggregationAverage, SampleCount: 1},
		{Tag: "loss_avg", Value: 2, Strategy: api.AggregationAverage, SampleCount: 2},
	}, aggregated)

	aggregated, err = AggregateSummary(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, aggregated)
}

func TestDropNonFinite(t *testing.T) {
	samples := []tfevents.Scalar{
		{Tag: "loss", Step: 1, Value: 0.5},
		{Tag: "loss", Step: 2, Value: math.NaN()},
		{Tag: "loss", Step: 3, Value: 0.25},
		{Tag: "loss", Step: 4, Value: math.Inf(1)},
		{Tag: "grad_norm", Step: 4, Value: math.Inf(-1)},
	}

	kept, dropped := DropNonFinite(samples)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []tfevents.Scalar{samples[0], samples[2]}, kept)

	summary, err := api.NewSummaryConfig("gs://bucket/run/events", api.AggregationAverage)
	require.NoError(t, err)
	aggregated, err := AggregateSummary(summary, kept)
	require.NoError(t, err)
	require.Len(t, aggregated, 1)
	assert.Equal(t, "loss", aggregated[0].Tag)
	assert.InDelta(t, 0.375, aggregated[0].Value, 1e-9)
	assert.Equal(t, 2, aggregated[0].SampleCount)
}

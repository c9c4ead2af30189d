package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlml/bench-metrics/pkg/api"
)

func TestResolveLocations(t *testing.T) {
	jsonLines, err := api.NewJSONLinesConfig("metrics.jsonl")
	require.NoError(t, err)
	profile, err := api.NewProfileConfig("/profile/")
	require.NoError(t, err)

	t.Run("runtime generated folder", func(t *testing.T) {
		m, err := api.NewMetricConfig(
			api.WithJSONLines(jsonLines),
			api.WithProfile(profile),
			api.WithRuntimeGeneratedGCSFolder(true),
		)
		require.NoError(t, err)

		locations, err := m.ResolveLocations("gs://bucket/multipod/maxtext/run-20240119040000/")
		require.NoError(t, err)
		assert.Equal(t, "gs://bucket/multipod/maxtext/run-20240119040000/metrics.jsonl", locations.JSONLines)
		assert.NotEqual(t, "metrics.jsonl", locations.JSONLines)
		assert.Equal(t, "gs://bucket/multipod/maxtext/run-20240119040000/profile/", locations.Profile)
		assert.Empty(t, locations.TensorBoardSummary)
	})

	t.Run("runtime generated folder is required", func(t *testing.T) {
		m, err := api.NewMetricConfig(api.WithJSONLines(jsonLines), api.WithRuntimeGeneratedGCSFolder(true))
		require.NoError(t, err)
		_, err = m.ResolveLocations("")
		assert.ErrorIs(t, err, api.ErrMissingField)
	})

	t.Run("absolute locations are used as given", func(t *testing.T) {
		absolute, err := api.NewJSONLinesConfig("gs://bucket/run/metrics.jsonl")
		require.NoError(t, err)
		m, err := api.NewMetricConfig(api.WithJSONLines(absolute))
		require.NoError(t, err)
		locations, err := m.ResolveLocations("gs://ignored")
		require.NoError(t, err)
		assert.Equal(t, "gs://bucket/run/metrics.jsonl", locations.JSONLines)
	})

	t.Run("regex summary location quotes the folder", func(t *testing.T) {
		summary, err := api.NewSummaryConfig(`tensorboard/events\.out\.tfevents\..*`, api.AggregationLast, api.WithRegexFileLocation(true))
		require.NoError(t, err)
		m, err := api.NewMetricConfig(api.WithTensorBoardSummary(summary), api.WithRuntimeGeneratedGCSFolder(true))
		require.NoError(t, err)
		locations, err := m.ResolveLocations("gs://bucket/run.1")
		require.NoError(t, err)
		assert.True(t, locations.SummaryIsRegex)
		assert.Equal(t, `gs://bucket/run\.1/tensorboard/events\.out\.tfevents\..*`, locations.TensorBoardSummary)
	})

	t.Run("regex only applies to the summary", func(t *testing.T) {
		summary, err := api.NewSummaryConfig(`events.*`, api.AggregationLast, api.WithRegexFileLocation(true))
		require.NoError(t, err)
		dotted, err := api.NewJSONLinesConfig("metrics.v1.jsonl")
		require.NoError(t, err)
		m, err := api.NewMetricConfig(api.WithJSONLines(dotted), api.WithTensorBoardSummary(summary), api.WithRuntimeGeneratedGCSFolder(true))
		require.NoError(t, err)
		locations, err := m.ResolveLocations("gs://bucket/run.1")
		require.NoError(t, err)
		assert.Equal(t, "gs://bucket/run.1/metrics.v1.jsonl", locations.JSONLines)
	})
}

func TestProfileDiscoveryPattern(t *testing.T) {
	assert.Equal(t, "gs://bucket/run123/.*/*xplane.pb", api.ProfileDiscoveryPattern("gs://bucket/run123"))
	assert.Equal(t, "gs://bucket/run123//.*/*xplane.pb", api.ProfileDiscoveryPattern("gs://bucket/run123/"))
	assert.Equal(t, " profile /.*/*xplane.pb", api.ProfileDiscoveryPattern(" profile "))

	assert.True(t, api.IsProfileTrace("2024_01_19_04_00_00/host0.xplane.pb"))
	assert.True(t, api.IsProfileTrace("/run/xplane.pb"))
	assert.False(t, api.IsProfileTrace("host0.xplane.pb"))
	assert.False(t, api.IsProfileTrace("a/b/host0.xplane.pb"))
	assert.False(t, api.IsProfileTrace("run/host0.trace.json.gz"))
}

func TestGenerateFolderLocation(t *testing.T) {
	now := time.Date(2024, 1, 19, 4, 5, 6, 0, time.UTC)

	folder, err := api.GenerateFolderLocation("gs://ml-auto-solutions/output/", "multipod/maxtext", "chained_tests_gemma-7b_stable", now)
	require.NoError(t, err)
	assert.Equal(t, "gs://ml-auto-solutions/output/multipod/maxtext/chained_tests_gemma-7b_stable-20240119040506", folder)

	folder, err = api.GenerateFolderLocation("gs://out", "", "bench", now.In(time.FixedZone("PST", -8*3600)))
	require.NoError(t, err)
	assert.Equal(t, "gs://out/bench-20240119040506", folder)

	_, err = api.GenerateFolderLocation("gs://out", "team", "", now)
	assert.ErrorIs(t, err, api.ErrMissingField)
	_, err = api.GenerateFolderLocation("", "team", "bench", now)
	assert.ErrorIs(t, err, api.ErrMissingField)
}

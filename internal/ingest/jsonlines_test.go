package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLines(t *testing.T) {
	input := `{"metrics": {"step_time": 0.5, "throughput": {"tokens": 1200, "examples": 8}}, "dimensions": {"accelerator": "v5e-256", "num_slices": 2}}

{"metrics": {"loss": 2.25, "converged": true}}
`
	records, err := ReadJSONLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, map[string]float64{
		"step_time":           0.5,
		"throughput.tokens":   1200,
		"throughput.examples": 8,
	}, records[0].Metrics)
	assert.Equal(t, map[string]string{"accelerator": "v5e-256", "num_slices": "2"}, records[0].Dimensions)

	assert.Equal(t, map[string]float64{"loss": 2.25, "converged": 1}, records[1].Metrics)
	assert.Nil(t, records[1].Dimensions)
}

func TestReadJSONLinesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"malformed", "{\"metrics\": {\"loss\": 1}}\n{not json}\n", "line 2"},
		{"no metrics", `{"dimensions": {"a": "b"}}`, "no metrics"},
		{"string metric", `{"metrics": {"loss": "low"}}`, "not numeric"},
		{"metrics not an object", `{"metrics": 3}`, "metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSONLines(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	records, err := ReadJSONLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

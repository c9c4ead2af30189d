package serviceerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/pkg/api"
)

func TestServiceError(t *testing.T) {
	err := NewServiceError(messages.ResourceNotFound, "Type", "run", "ResourceId", "abc")
	assert.Equal(t, "The run resource abc was not found.", err.Error())
	assert.Equal(t, 404, StatusCode(err))
	assert.Equal(t, 500, StatusCode(errors.New("plain")))
}

func TestFromValidation(t *testing.T) {
	tests := []struct {
		name     string
		doc      api.MetricConfigDocument
		code     *messages.MessageCode
		contains string
	}{
		{
			name:     "missing field",
			doc:      api.MetricConfigDocument{JSONLines: &api.JSONLinesDocument{}},
			code:     messages.MissingField,
			contains: "json_lines.file_location",
		},
		{
			name:     "invalid value",
			doc:      api.MetricConfigDocument{TensorBoardSummary: &api.SummaryDocument{FileLocation: "tb", AggregationStrategy: "max"}},
			code:     messages.InvalidFieldValue,
			contains: "last, average, median",
		},
		{
			name:     "invalid pattern",
			doc:      api.MetricConfigDocument{TensorBoardSummary: &api.SummaryDocument{FileLocation: "tb", AggregationStrategy: "last", IncludeTagPatterns: []string{""}}},
			code:     messages.InvalidPattern,
			contains: "include_tag_patterns",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.ToMetricConfig()
			require.Error(t, err)
			mapped := FromValidation(err)
			var se *ServiceError
			require.ErrorAs(t, mapped, &se)
			assert.Equal(t, tt.code, se.MessageCode())
			assert.Contains(t, mapped.Error(), tt.contains)
			assert.ErrorIs(t, mapped, errors.Unwrap(err))
		})
	}

	plain := errors.New("plain")
	assert.Same(t, plain, FromValidation(plain))
}

func TestWithRollback(t *testing.T) {
	assert.NoError(t, WithRollback(nil))
	cause := NewStorageError("insert failed")
	err := WithRollback(cause)
	assert.True(t, NeedsRollback(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, NeedsRollback(cause))
}

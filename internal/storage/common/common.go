package common

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"

	"github.com/xlml/bench-metrics/pkg/api"
)

// MetricRow is one metric value of a run result as stored in the metric
// tables.
type MetricRow struct {
	Source     api.FormatType
	Metric     string
	Value      float64
	Dimensions map[string]string
}

// DimensionsJSON returns the dimensions as JSON, or nil when there are none.
func (r MetricRow) DimensionsJSON() (*string, error) {
	if len(r.Dimensions) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(r.Dimensions)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// MetricRows flattens a run result into rows: JSON Lines records first in
// file order, then the aggregated summary tags, then the profile metrics.
func MetricRows(result *api.RunResult) []MetricRow {
	var rows []MetricRow
	for _, record := range result.JSONLines {
		names := lo.Keys(record.Metrics)
		slices.Sort(names)
		for _, name := range names {
			rows = append(rows, MetricRow{
				Source:     api.FormatJSONLines,
				Metric:     name,
				Value:      record.Metrics[name],
				Dimensions: record.Dimensions,
			})
		}
	}
	for _, aggregated := range result.Summary {
		rows = append(rows, MetricRow{
			Source:     api.FormatTensorBoardSummary,
			Metric:     aggregated.Tag,
			Value:      aggregated.Value,
			Dimensions: map[string]string{"aggregation_strategy": string(aggregated.Strategy)},
		})
	}
	if result.Profile != nil {
		names := lo.Keys(result.Profile.Metrics)
		slices.Sort(names)
		for _, name := range names {
			rows = append(rows, MetricRow{
				Source:     api.FormatProfile,
				Metric:     name,
				Value:      result.Profile.Metrics[name],
				Dimensions: map[string]string{"location": result.Profile.Location},
			})
		}
	}
	return rows
}

package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Jeffail/gabs/v2"

	"github.com/xlml/bench-metrics/pkg/api"
)

const maxLineSize = 16 * 1024 * 1024

// ReadJSONLines parses one MetricRecord per non-empty line. Each line is an
// object with a "metrics" object, whose nested keys are flattened with dots,
// and an optional "dimensions" object of labels.
func ReadJSONLines(r io.Reader) ([]api.MetricRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []api.MetricRecord
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		record, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(line []byte) (api.MetricRecord, error) {
	parsed, err := gabs.ParseJSON(line)
	if err != nil {
		return api.MetricRecord{}, err
	}
	if !parsed.Exists("metrics") {
		return api.MetricRecord{}, fmt.Errorf("record has no metrics")
	}
	flat, err := parsed.Search("metrics").Flatten()
	if err != nil {
		return api.MetricRecord{}, fmt.Errorf("metrics: %w", err)
	}

	record := api.MetricRecord{Metrics: make(map[string]float64, len(flat))}
	for key, value := range flat {
		number, ok := toFloat(value)
		if !ok {
			return api.MetricRecord{}, fmt.Errorf("metric %q is not numeric: %v", key, value)
		}
		record.Metrics[key] = number
	}

	if parsed.Exists("dimensions") {
		children := parsed.Search("dimensions").ChildrenMap()
		record.Dimensions = make(map[string]string, len(children))
		for key, child := range children {
			if s, ok := child.Data().(string); ok {
				record.Dimensions[key] = s
			} else {
				record.Dimensions[key] = child.String()
			}
		}
	}
	return record, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

package api

import (
	"slices"
	"strings"
)

// DatasetOption selects the dataset (table) a benchmark's metrics are written to.
type DatasetOption string

const (
	DatasetBenchmark DatasetOption = "benchmark_dataset"
	DatasetXLML      DatasetOption = "xlml_dataset"
)

var datasetOptions = []DatasetOption{DatasetBenchmark, DatasetXLML}

func (d DatasetOption) String() string {
	return string(d)
}

func (d DatasetOption) IsValid() bool {
	return isDeclared(d, datasetOptions)
}

func (d *DatasetOption) UnmarshalText(text []byte) error {
	v, err := GetDatasetOption(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d DatasetOption) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

func GetDatasetOption(s string) (DatasetOption, error) {
	switch s {
	case string(DatasetBenchmark):
		return DatasetBenchmark, nil
	case string(DatasetXLML):
		return DatasetXLML, nil
	default:
		return DatasetOption(s), invalidValue("dataset", s, DatasetOptions())
	}
}

// DatasetOptions returns the declared dataset names.
func DatasetOptions() []string {
	return names(datasetOptions)
}

// FormatType tags how a metric source is encoded.
type FormatType string

const (
	FormatJSONLines          FormatType = "json_lines"
	FormatTensorBoardSummary FormatType = "tensorboard_summary"
	FormatProfile            FormatType = "profile"
)

var formatTypes = []FormatType{FormatJSONLines, FormatTensorBoardSummary, FormatProfile}

func (f FormatType) String() string {
	return string(f)
}

func (f FormatType) IsValid() bool {
	return isDeclared(f, formatTypes)
}

func (f *FormatType) UnmarshalText(text []byte) error {
	v, err := GetFormatType(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f FormatType) MarshalText() ([]byte, error) {
	return []byte(f), nil
}

func GetFormatType(s string) (FormatType, error) {
	switch s {
	case string(FormatJSONLines):
		return FormatJSONLines, nil
	case string(FormatTensorBoardSummary):
		return FormatTensorBoardSummary, nil
	case string(FormatProfile):
		return FormatProfile, nil
	default:
		return FormatType(s), invalidValue("format", s, FormatTypes())
	}
}

func FormatTypes() []string {
	return names(formatTypes)
}

// AggregationStrategy is the reduction applied when several samples exist for
// the same metric key.
type AggregationStrategy string

const (
	AggregationLast    AggregationStrategy = "last"
	AggregationAverage AggregationStrategy = "average"
	AggregationMedian  AggregationStrategy = "median"
)

var aggregationStrategies = []AggregationStrategy{AggregationLast, AggregationAverage, AggregationMedian}

func (a AggregationStrategy) String() string {
	return string(a)
}

func (a AggregationStrategy) IsValid() bool {
	return isDeclared(a, aggregationStrategies)
}

func (a *AggregationStrategy) UnmarshalText(text []byte) error {
	v, err := GetAggregationStrategy(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a AggregationStrategy) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

func GetAggregationStrategy(s string) (AggregationStrategy, error) {
	switch s {
	case string(AggregationLast):
		return AggregationLast, nil
	case string(AggregationAverage):
		return AggregationAverage, nil
	case string(AggregationMedian):
		return AggregationMedian, nil
	default:
		return AggregationStrategy(s), invalidValue("aggregation_strategy", s, AggregationStrategies())
	}
}

func AggregationStrategies() []string {
	return names(aggregationStrategies)
}

// SSHEnvVar is a shell placeholder that benchmark commands use to refer to the
// run's output folder.
type SSHEnvVar string

const (
	SSHEnvGCSOutput      SSHEnvVar = "${GCS_OUTPUT}"
	SSHEnvBaseOutputPath SSHEnvVar = "${BASE_OUTPUT_PATH}"
)

var sshEnvVars = []SSHEnvVar{SSHEnvGCSOutput, SSHEnvBaseOutputPath}

func (v SSHEnvVar) String() string {
	return string(v)
}

func (v SSHEnvVar) IsValid() bool {
	return isDeclared(v, sshEnvVars)
}

// Name returns the variable name without the ${} wrapper.
func (v SSHEnvVar) Name() string {
	return strings.TrimSuffix(strings.TrimPrefix(string(v), "${"), "}")
}

// Expand replaces every occurrence of the placeholder in cmd with value.
func (v SSHEnvVar) Expand(cmd string, value string) string {
	return strings.ReplaceAll(cmd, string(v), value)
}

func GetSSHEnvVar(s string) (SSHEnvVar, error) {
	switch s {
	case string(SSHEnvGCSOutput):
		return SSHEnvGCSOutput, nil
	case string(SSHEnvBaseOutputPath):
		return SSHEnvBaseOutputPath, nil
	default:
		return SSHEnvVar(s), invalidValue("ssh_env_var", s, names(sshEnvVars))
	}
}

func isDeclared[T comparable](v T, declared []T) bool {
	return slices.Contains(declared, v)
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

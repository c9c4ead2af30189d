package serialization

import (
	_ "embed"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

//go:embed schemas/benchmark_run.schema.json
var benchmarkRunSchema string

var runSchema = lo.Must(gojsonschema.NewSchema(gojsonschema.NewStringLoader(benchmarkRunSchema)))

// UnmarshalYAML decodes a YAML (or JSON) definition file holding either a
// single run or a list of runs under "runs". The raw document is checked
// against the run schema, then the struct validator, then the api constructors.
func UnmarshalYAML(validate *validator.Validate, executionContext *executioncontext.ExecutionContext, data []byte) ([]*api.BenchmarkRun, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, serviceerrors.NewServiceError(messages.InvalidDefinition, "Type", definitionType, "Error", err.Error()).WithCause(err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var file api.BenchmarkRunFile
	if m, ok := raw.(map[string]any); ok && m["runs"] != nil {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, serviceerrors.NewServiceError(messages.InvalidDefinition, "Type", definitionType, "Error", err.Error()).WithCause(err)
		}
	} else {
		var doc api.BenchmarkRunDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, serviceerrors.NewServiceError(messages.InvalidDefinition, "Type", definitionType, "Error", err.Error()).WithCause(err)
		}
		file.Runs = []api.BenchmarkRunDocument{doc}
	}
	if err := validateStruct(validate, executionContext, &file); err != nil {
		return nil, err
	}
	return ToBenchmarkRuns(file.Runs)
}

// UnmarshalRun decodes the JSON hand-off of a single run.
func UnmarshalRun(validate *validator.Validate, executionContext *executioncontext.ExecutionContext, jsonBytes []byte) (*api.BenchmarkRun, error) {
	var doc api.BenchmarkRunDocument
	if err := Unmarshal(validate, executionContext, jsonBytes, &doc); err != nil {
		return nil, err
	}
	run, err := doc.ToBenchmarkRun()
	if err != nil {
		return nil, serviceerrors.FromValidation(err)
	}
	return run, nil
}

// ToBenchmarkRuns converts documents, reporting the first invalid one.
func ToBenchmarkRuns(docs []api.BenchmarkRunDocument) ([]*api.BenchmarkRun, error) {
	runs := make([]*api.BenchmarkRun, 0, len(docs))
	for _, doc := range docs {
		run, err := doc.ToBenchmarkRun()
		if err != nil {
			return nil, serviceerrors.FromValidation(err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func validateSchema(raw any) error {
	result, err := runSchema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return serviceerrors.NewServiceError(messages.InvalidDefinition, "Type", definitionType, "Error", err.Error()).WithCause(err)
	}
	if result.Valid() {
		return nil
	}
	details := lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string {
		return e.String()
	})
	return serviceerrors.NewServiceError(messages.SchemaValidationFailed, "Type", definitionType, "Error", strings.Join(details, "; "))
}

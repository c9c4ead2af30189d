package serialization

import (
	"encoding/json"
	"errors"

	validator "github.com/go-playground/validator/v10"

	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
)

const definitionType = "benchmark run"

// Unmarshal decodes a JSON document into v and validates the result.
func Unmarshal(validate *validator.Validate, executionContext *executioncontext.ExecutionContext, jsonBytes []byte, v any) error {
	err := json.Unmarshal(jsonBytes, v)
	if err != nil {
		return serviceerrors.NewServiceError(messages.InvalidDefinition, "Type", definitionType, "Error", err.Error()).WithCause(err)
	}
	return validateStruct(validate, executionContext, v)
}

func validateStruct(validate *validator.Validate, executionContext *executioncontext.ExecutionContext, v any) error {
	err := validate.StructCtx(executionContext.Ctx, v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, validationError := range validationErrors {
			executionContext.Logger.Info("Validation error", "field", validationError.Namespace(), "tag", validationError.Tag(), "value", validationError.Value())
		}
	}
	return serviceerrors.NewServiceError(messages.DefinitionValidationFailed, "Type", definitionType, "Error", err.Error()).WithCause(err)
}

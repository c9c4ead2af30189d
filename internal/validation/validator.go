package validation

import (
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/xlml/bench-metrics/pkg/api"
)

func NewValidator() (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	register(validate)
	if err := registerCustomValidators(validate); err != nil {
		return nil, err
	}
	return validate, nil
}

func register(instance *validator.Validate) {
	// register function to get tag name from json tags
	instance.RegisterTagNameFunc(
		func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		},
	)
}

func registerCustomValidators(instance *validator.Validate) error {
	validators := map[string]validator.Func{
		"dataset_option": func(fl validator.FieldLevel) bool {
			return api.DatasetOption(fl.Field().String()).IsValid()
		},
		"aggregation_strategy": func(fl validator.FieldLevel) bool {
			return api.AggregationStrategy(fl.Field().String()).IsValid()
		},
		"format_type": func(fl validator.FieldLevel) bool {
			return api.FormatType(fl.Field().String()).IsValid()
		},
		"tag_pattern": func(fl validator.FieldLevel) bool {
			_, err := api.CompileTagPattern(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range validators {
		if err := instance.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

package messages

import (
	"fmt"
	"strings"

	"github.com/xlml/bench-metrics/internal/constants"
)

// This package provides all the error messages that should be reported to the user.
// Note that we add a comment with the message parameters so that it is possible
// to see the parameters in the IDE when creating an error message.
var (
	// Definition errors

	// InvalidFieldValue The {{.Field}} value '{{.Value}}' is not valid. Allowed values are: {{.Allowed}}.
	InvalidFieldValue = createMessage(
		constants.HTTPCodeBadRequest,
		"The {{.Field}} value '{{.Value}}' is not valid. Allowed values are: {{.Allowed}}.",
	)

	// MissingField The field '{{.Field}}' is required.
	MissingField = createMessage(
		constants.HTTPCodeBadRequest,
		"The field '{{.Field}}' is required.",
	)

	// InvalidPattern The pattern '{{.Value}}' of {{.Field}} is not valid: '{{.Error}}'.
	InvalidPattern = createMessage(
		constants.HTTPCodeBadRequest,
		"The pattern '{{.Value}}' of {{.Field}} is not valid: '{{.Error}}'.",
	)

	// InvalidDefinition The {{.Type}} definition is invalid: '{{.Error}}'. Please check the definition and try again.
	InvalidDefinition = createMessage(
		constants.HTTPCodeBadRequest,
		"The {{.Type}} definition is invalid: '{{.Error}}'. Please check the definition and try again.",
	)

	// DefinitionValidationFailed The {{.Type}} definition validation failed: '{{.Error}}'. Please check the definition and try again.
	DefinitionValidationFailed = createMessage(
		constants.HTTPCodeBadRequest,
		"The {{.Type}} definition validation failed: '{{.Error}}'. Please check the definition and try again.",
	)

	// SchemaValidationFailed The {{.Type}} definition does not match its schema: '{{.Error}}'.
	SchemaValidationFailed = createMessage(
		constants.HTTPCodeBadRequest,
		"The {{.Type}} definition does not match its schema: '{{.Error}}'.",
	)

	// API errors

	// MissingPathParameter The path parameter '{{.ParameterName}}' is required.
	MissingPathParameter = createMessage(
		constants.HTTPCodeBadRequest,
		"The path parameter '{{.ParameterName}}' is required.",
	)

	// ResourceNotFound The {{.Type}} resource {{.ResourceId}} was not found.
	ResourceNotFound = createMessage(
		constants.HTTPCodeNotFound,
		"The {{.Type}} resource {{.ResourceId}} was not found.",
	)

	// QueryParameterInvalid The query parameter '{{.ParameterName}}' is not a valid {{.Type}}: '{{.Value}}'.
	QueryParameterInvalid = createMessage(
		constants.HTTPCodeBadRequest,
		"The query parameter '{{.ParameterName}}' is not a valid {{.Type}}: '{{.Value}}'.",
	)

	// MethodNotAllowed The HTTP method {{.Method}} is not allowed for the API {{.Api}}.
	MethodNotAllowed = createMessage(
		constants.HTTPCodeMethodNotAllowed,
		"The HTTP method {{.Method}} is not allowed for the API {{.Api}}.",
	)

	// Ingestion errors

	// MetricSourceNotFound No {{.Format}} metric file was found at '{{.Location}}'.
	MetricSourceNotFound = createMessage(
		constants.HTTPCodeNotFound,
		"No {{.Format}} metric file was found at '{{.Location}}'.",
	)

	// MetricSourceReadFailed Reading the {{.Format}} metric file '{{.Location}}' failed: '{{.Error}}'.
	MetricSourceReadFailed = createMessage(
		constants.HTTPCodeInternalServerError,
		"Reading the {{.Format}} metric file '{{.Location}}' failed: '{{.Error}}'.",
	)

	// Configuration related errors

	// ConfigurationFailed The startup failed: '{{.Error}}'.
	ConfigurationFailed = createMessage(
		constants.HTTPCodeInternalServerError,
		"The startup failed: '{{.Error}}'.",
	)

	// Storage related errors

	// DatabaseOperationFailed The request for the {{.Type}} resource {{.ResourceId}} failed: '{{.Error}}'.
	DatabaseOperationFailed = createMessage(
		constants.HTTPCodeInternalServerError,
		"The request for the {{.Type}} resource {{.ResourceId}} failed: '{{.Error}}'.",
	)
	// QueryFailed The request for the {{.Type}} failed: '{{.Error}}'.
	QueryFailed = createMessage(
		constants.HTTPCodeInternalServerError,
		"The request for the {{.Type}} failed: '{{.Error}}'.",
	)

	// InternalServerError An internal server error occurred: '{{.Error}}'.
	InternalServerError = createMessage(
		constants.HTTPCodeInternalServerError,
		"An internal server error occurred: '{{.Error}}'.",
	)

	// UnknownError An unknown error occurred: '{{.Error}}'. This is a fallback error if the error is not a service error.
	UnknownError = createMessage(
		constants.HTTPCodeInternalServerError,
		"An unknown error occurred: {{.Error}}.",
	)
)

type MessageCode struct {
	status int
	one    string
}

func (m *MessageCode) GetCode() int {
	return m.status
}

func (m *MessageCode) GetMessage() string {
	return m.one
}

func createMessage(status int, one string) *MessageCode {
	return &MessageCode{
		status,
		one,
	}
}

func GetErrorMesssage(messageCode *MessageCode, messageParams ...any) string {
	msg := messageCode.GetMessage()
	for i := 0; i < len(messageParams); i += 2 {
		param := messageParams[i]
		var paramValue any
		if i+1 < len(messageParams) {
			paramValue = messageParams[i+1]
		} else {
			paramValue = "NOT_DEFINED" // this is a placeholder for a missing parameter value - if you see this value then the code needs to be fixed
		}
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{{.%v}}", param), fmt.Sprintf("%v", paramValue))
	}
	return msg
}

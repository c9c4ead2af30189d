package serviceerrors

import (
	"errors"
	"strings"

	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/pkg/api"
)

type ServiceError struct {
	messageCode   *messages.MessageCode
	messageParams []any
	cause         error
}

func (e *ServiceError) Error() string {
	return messages.GetErrorMesssage(e.messageCode, e.messageParams...)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func (e *ServiceError) MessageCode() *messages.MessageCode {
	return e.messageCode
}

func (e *ServiceError) MessageParams() []any {
	return e.messageParams
}

// WithCause records the underlying error so that errors.Is/As keep working.
func (e *ServiceError) WithCause(err error) *ServiceError {
	e.cause = err
	return e
}

func NewServiceError(messageCode *messages.MessageCode, messageParams ...any) *ServiceError {
	return &ServiceError{
		messageCode:   messageCode,
		messageParams: messageParams,
	}
}

// FromValidation maps a configuration validation error to the matching
// message. Errors that are not validation errors are returned unchanged.
func FromValidation(err error) error {
	var ve *api.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var se *ServiceError
	switch {
	case errors.Is(err, api.ErrMissingField):
		se = NewServiceError(messages.MissingField, "Field", ve.Field)
	case errors.Is(err, api.ErrInvalidPattern):
		se = NewServiceError(messages.InvalidPattern, "Field", ve.Field, "Value", ve.Value, "Error", ve.Reason)
	default:
		allowed := strings.Join(ve.Allowed, ", ")
		if ve.Reason != "" {
			allowed = ve.Reason
		}
		se = NewServiceError(messages.InvalidFieldValue, "Field", ve.Field, "Value", ve.Value, "Allowed", allowed)
	}
	return se.WithCause(err)
}

// StatusCode returns the status attached to a service error, or 500.
func StatusCode(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.MessageCode().GetCode()
	}
	return messages.UnknownError.GetCode()
}

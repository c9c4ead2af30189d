package api

import (
	"errors"
	"strings"
)

var (
	ErrInvalidValue   = errors.New("invalid value")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidPattern = errors.New("invalid pattern")
)

// ValidationError is returned by every constructor in this package when the
// supplied fields do not form a valid configuration.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Reason  string
	err     error
}

func (e *ValidationError) Error() string {
	sb := strings.Builder{}
	sb.WriteString(e.Field)
	sb.WriteString(": ")
	sb.WriteString(e.err.Error())
	if e.Value != "" {
		sb.WriteString(" '")
		sb.WriteString(e.Value)
		sb.WriteString("'")
	}
	if len(e.Allowed) > 0 {
		sb.WriteString(" (allowed: ")
		sb.WriteString(strings.Join(e.Allowed, ", "))
		sb.WriteString(")")
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

func invalidValue(field string, value string, allowed []string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Allowed: allowed, err: ErrInvalidValue}
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, err: ErrMissingField}
}

func invalidPattern(field string, value string, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason, err: ErrInvalidPattern}
}

// prefixField qualifies the field of a nested validation error, e.g.
// "aggregation_strategy" becomes "tensorboard_summary.aggregation_strategy".
func prefixField(prefix string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		qualified := *ve
		qualified.Field = prefix + "." + ve.Field
		return &qualified
	}
	return err
}

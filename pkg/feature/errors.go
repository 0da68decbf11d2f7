package feature

import (
	"errors"
	"fmt"
)

// FieldError is implemented by validation errors tied to a single raw field.
// Renderers use it to attach the message to the matching form control.
type FieldError interface {
	error
	FieldName() string
}

// MissingFieldError reports a required field absent from the submission.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("feature: missing required field %q", e.Field)
}

// FieldName returns the raw field name.
func (e *MissingFieldError) FieldName() string {
	return e.Field
}

// InvalidValueError reports a field that is present but unparseable,
// malformed or numerically invalid.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("feature: invalid value %q for field %q", e.Value, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// FieldName returns the raw field name.
func (e *InvalidValueError) FieldName() string {
	return e.Field
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

var (
	_ FieldError = (*MissingFieldError)(nil)
	_ FieldError = (*InvalidValueError)(nil)
)

// IsValidationError reports whether err came from Build.
func IsValidationError(err error) bool {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return true
	}
	var invalid *InvalidValueError
	return errors.As(err, &invalid)
}

var (
	errNonPositiveScreen = errors.New("screen size must be greater than zero")
	errNonFinitePPI      = errors.New("pixel density is not finite")
)

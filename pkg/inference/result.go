package inference

import (
	"errors"
	"fmt"
)

// PredictionError wraps any failure raised while running the pipeline or
// interpreting its output.
type PredictionError struct {
	Message string
	Err     error
}

func (e *PredictionError) Error() string {
	return "inference: " + e.Message
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// IsPredictionError reports whether err carries a *PredictionError.
func IsPredictionError(err error) bool {
	var target *PredictionError
	return errors.As(err, &target)
}

// Result is exactly one of a price or an error.
type Result struct {
	price int64
	err   error
}

// Success returns a Result carrying price.
func Success(price int64) Result {
	return Result{price: price}
}

// Failure returns a Result carrying err. A nil err is replaced with a
// generic PredictionError so the Result never reads as a success.
func Failure(err error) Result {
	if err == nil {
		err = &PredictionError{Message: "unknown failure"}
	}
	return Result{err: err}
}

// OK reports whether the Result holds a price.
func (r Result) OK() bool {
	return r.err == nil
}

// Price returns the predicted price and true on success.
func (r Result) Price() (int64, bool) {
	if r.err != nil {
		return 0, false
	}
	return r.price, true
}

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	return r.err
}

// Message is the text shown to the user: the decimal price on success, the
// error message otherwise.
func (r Result) Message() string {
	if r.err != nil {
		return r.err.Error()
	}
	return fmt.Sprintf("%d", r.price)
}

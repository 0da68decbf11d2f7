// Package inference calls the trained price pipeline and converts its
// log-scale output back into a whole-currency price.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/goliatone/go-laptopprice/pkg/feature"
)

// Pipeline is the opaque trained artifact. Predict returns the natural log of
// the price for a single row. Implementations must be safe for concurrent
// use because one instance serves every request.
type Pipeline interface {
	Predict(ctx context.Context, vector feature.Vector) (float64, error)
}

// PipelineFunc adapts a plain function to the Pipeline interface.
type PipelineFunc func(ctx context.Context, vector feature.Vector) (float64, error)

// Predict calls fn.
func (fn PipelineFunc) Predict(ctx context.Context, vector feature.Vector) (float64, error) {
	return fn(ctx, vector)
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger routes invocation diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Invoker runs one prediction per call. It holds no per-call state.
type Invoker struct {
	pipeline Pipeline
	logger   *slog.Logger
}

// New constructs an Invoker around pipeline.
func New(pipeline Pipeline, options ...Option) *Invoker {
	inv := &Invoker{
		pipeline: pipeline,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(inv)
	}
	return inv
}

// Invoke predicts the price for vector. Pipeline errors, pipeline panics and
// unusable outputs all come back as a Failure wrapping *PredictionError.
func (i *Invoker) Invoke(ctx context.Context, vector feature.Vector) Result {
	if i == nil || i.pipeline == nil {
		return Failure(&PredictionError{Message: "pipeline is not configured"})
	}

	logPrice, err := i.predict(ctx, vector)
	if err != nil {
		i.logger.Warn("pipeline prediction failed", "error", err)
		return Failure(&PredictionError{Message: err.Error(), Err: err})
	}

	price, err := InvertLogPrice(logPrice)
	if err != nil {
		i.logger.Warn("pipeline output rejected", "log_price", logPrice, "error", err)
		return Failure(err)
	}
	return Success(price)
}

func (i *Invoker) predict(ctx context.Context, vector feature.Vector) (logPrice float64, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pipeline panic: %v", recovered)
		}
	}()
	return i.pipeline.Predict(ctx, vector)
}

// InvertLogPrice returns floor(exp(logPrice)). Non-finite input and results
// outside the int64 range fail with *PredictionError.
func InvertLogPrice(logPrice float64) (int64, error) {
	if math.IsNaN(logPrice) || math.IsInf(logPrice, 0) {
		return 0, &PredictionError{Message: fmt.Sprintf("pipeline returned non-finite log price %v", logPrice)}
	}
	price := math.Floor(math.Exp(logPrice))
	if math.IsInf(price, 0) || price >= math.MaxInt64 {
		return 0, &PredictionError{Message: fmt.Sprintf("price for log price %v overflows", logPrice)}
	}
	if price < 0 {
		return 0, &PredictionError{Message: fmt.Sprintf("pipeline produced negative price %v", price)}
	}
	return int64(price), nil
}

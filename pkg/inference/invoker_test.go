package inference_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
)

func constant(value float64) inference.Pipeline {
	return inference.PipelineFunc(func(context.Context, feature.Vector) (float64, error) {
		return value, nil
	})
}

func TestInvoke_ZeroLogPriceIsOne(t *testing.T) {
	result := inference.New(constant(0)).Invoke(context.Background(), feature.Vector{})
	price, ok := result.Price()
	if !ok {
		t.Fatalf("expected success, got %v", result.Err())
	}
	if price != 1 {
		t.Fatalf("price = %d, want 1", price)
	}
	if result.Message() != "1" {
		t.Fatalf("message = %q, want 1", result.Message())
	}
}

func TestInvoke_FloorsExponent(t *testing.T) {
	cases := []struct {
		logPrice float64
		want     int64
	}{
		{math.Log(47895.5), 47895},
		{10.77, int64(math.Floor(math.Exp(10.77)))},
		{-1, 0},
		{-745, 0},
	}
	for _, tc := range cases {
		result := inference.New(constant(tc.logPrice)).Invoke(context.Background(), feature.Vector{})
		price, ok := result.Price()
		if !ok {
			t.Fatalf("log %v: unexpected failure %v", tc.logPrice, result.Err())
		}
		if price != tc.want {
			t.Fatalf("log %v: price = %d, want %d", tc.logPrice, price, tc.want)
		}
	}
}

func TestInvoke_PassesVectorThrough(t *testing.T) {
	want := feature.Vector{Company: "Dell", Ram: 8, PPI: 141.2}
	var got feature.Vector
	pipeline := inference.PipelineFunc(func(_ context.Context, v feature.Vector) (float64, error) {
		got = v
		return 1, nil
	})

	inference.New(pipeline).Invoke(context.Background(), want)
	if got != want {
		t.Fatalf("pipeline saw %+v, want %+v", got, want)
	}
}

func TestInvoke_CallsPipelineOnce(t *testing.T) {
	var calls atomic.Int32
	pipeline := inference.PipelineFunc(func(context.Context, feature.Vector) (float64, error) {
		calls.Add(1)
		return 0, errors.New("flaky")
	})

	inference.New(pipeline).Invoke(context.Background(), feature.Vector{})
	if calls.Load() != 1 {
		t.Fatalf("pipeline called %d times, want 1", calls.Load())
	}
}

func TestInvoke_PipelineErrorBecomesPredictionError(t *testing.T) {
	cause := errors.New("unknown category 'Dell'")
	pipeline := inference.PipelineFunc(func(context.Context, feature.Vector) (float64, error) {
		return 0, cause
	})

	result := inference.New(pipeline).Invoke(context.Background(), feature.Vector{})
	if result.OK() {
		t.Fatalf("expected failure")
	}
	var predErr *inference.PredictionError
	if !errors.As(result.Err(), &predErr) {
		t.Fatalf("expected PredictionError, got %T", result.Err())
	}
	if !errors.Is(result.Err(), cause) {
		t.Fatalf("cause not preserved: %v", result.Err())
	}
	if !strings.Contains(result.Message(), "unknown category 'Dell'") {
		t.Fatalf("message %q lost original text", result.Message())
	}
}

func TestInvoke_RecoversPanics(t *testing.T) {
	pipeline := inference.PipelineFunc(func(context.Context, feature.Vector) (float64, error) {
		panic("index out of range")
	})

	result := inference.New(pipeline).Invoke(context.Background(), feature.Vector{})
	if !inference.IsPredictionError(result.Err()) {
		t.Fatalf("expected PredictionError, got %v", result.Err())
	}
	if !strings.Contains(result.Message(), "index out of range") {
		t.Fatalf("message %q lost panic value", result.Message())
	}
}

func TestInvoke_RejectsUnusableOutput(t *testing.T) {
	for name, value := range map[string]float64{
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"neg-inf":  math.Inf(-1),
		"overflow": 1000,
		"int64":    44,
	} {
		t.Run(name, func(t *testing.T) {
			result := inference.New(constant(value)).Invoke(context.Background(), feature.Vector{})
			if result.OK() {
				price, _ := result.Price()
				t.Fatalf("expected failure, got price %d", price)
			}
			if !inference.IsPredictionError(result.Err()) {
				t.Fatalf("expected PredictionError, got %T", result.Err())
			}
		})
	}
}

func TestInvoke_NilPipeline(t *testing.T) {
	result := inference.New(nil).Invoke(context.Background(), feature.Vector{})
	if !inference.IsPredictionError(result.Err()) {
		t.Fatalf("expected PredictionError, got %v", result.Err())
	}
}

func TestResult_FailureNeverReadsAsSuccess(t *testing.T) {
	result := inference.Failure(nil)
	if result.OK() {
		t.Fatalf("nil failure reported OK")
	}
	if _, ok := result.Price(); ok {
		t.Fatalf("nil failure returned a price")
	}
}

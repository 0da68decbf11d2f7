// Package metrics records prediction and HTTP activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
)

// Prediction outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomePrediction = "prediction_error"
)

// Recorder receives operational events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordPrediction(outcome string, duration time.Duration)
	RecordRequest(route, method string, status int, duration time.Duration)
	RecordRateLimited(route string)
}

// Outcome classifies a prediction error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case feature.IsValidationError(err):
		return OutcomeValidation
	case inference.IsPredictionError(err):
		return OutcomePrediction
	default:
		return OutcomePrediction
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) RecordPrediction(string, time.Duration)           {}
func (Noop) RecordRequest(string, string, int, time.Duration) {}
func (Noop) RecordRateLimited(string)                         {}

var _ Recorder = Noop{}

// Prometheus records events into a dedicated registry.
type Prometheus struct {
	registry          *prometheus.Registry
	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec
	requests          *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	rateLimited       *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors under namespace and registers them,
// together with the Go runtime and process collectors, in a new registry.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "laptopprice"
	}
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by outcome",
		}, []string{"outcome"}),
		predictionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent building features and invoking the pipeline",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}

	p.registry.MustRegister(
		p.predictions,
		p.predictionLatency,
		p.requests,
		p.requestLatency,
		p.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// RecordPrediction implements Recorder.
func (p *Prometheus) RecordPrediction(outcome string, duration time.Duration) {
	p.predictions.WithLabelValues(outcome).Inc()
	p.predictionLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRequest implements Recorder.
func (p *Prometheus) RecordRequest(route, method string, status int, duration time.Duration) {
	p.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.requestLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRateLimited implements Recorder.
func (p *Prometheus) RecordRateLimited(route string) {
	p.rateLimited.WithLabelValues(route).Inc()
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
)

const (
	defaultRemoteTimeout = 5 * time.Second
	maxErrorBody         = 512
)

// RemoteOption configures a Remote pipeline.
type RemoteOption func(*Remote)

// WithHTTPClient injects the client used for inference calls.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		if client != nil {
			r.client = client
		}
	}
}

// WithTimeout bounds each inference call.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(r *Remote) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithHeader adds a header to every inference request.
func WithHeader(key, value string) RemoteOption {
	return func(r *Remote) {
		if key != "" {
			r.headers.Set(key, value)
		}
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *slog.Logger) RemoteOption {
	return func(r *Remote) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Remote delegates prediction to an HTTP inference service that accepts a
// single-row frame and answers with one prediction.
type Remote struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	headers  http.Header
	logger   *slog.Logger
}

var _ inference.Pipeline = (*Remote)(nil)

// RemoteRequest is the body posted to the inference service.
type RemoteRequest struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// RemoteResponse is the body expected back.
type RemoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

// NewRemote constructs a client for endpoint.
func NewRemote(endpoint string, options ...RemoteOption) (*Remote, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("pipeline: remote: endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("pipeline: remote: endpoint %q must be http(s)", endpoint)
	}

	r := &Remote{
		endpoint: endpoint,
		client:   http.DefaultClient,
		timeout:  defaultRemoteTimeout,
		headers:  make(http.Header),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Predict posts vector and returns the single prediction from the response.
func (r *Remote) Predict(ctx context.Context, vector feature.Vector) (float64, error) {
	payload, err := json.Marshal(RemoteRequest{
		Columns: feature.Columns(),
		Data:    [][]any{vector.Values()},
	})
	if err != nil {
		return 0, fmt.Errorf("pipeline: remote: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("pipeline: remote: build request: %w", err)
	}
	for key, values := range r.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pipeline: remote: request: %w", err)
	}
	defer resp.Body.Close()

	r.logger.Debug("remote prediction", "endpoint", r.endpoint, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return 0, fmt.Errorf("pipeline: remote: upstream returned status %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("pipeline: remote: upstream returned status %d: %s", resp.StatusCode, msg)
	}

	var decoded RemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("pipeline: remote: decode response: %w", err)
	}
	if len(decoded.Predictions) != 1 {
		return 0, fmt.Errorf("pipeline: remote: expected 1 prediction, got %d", len(decoded.Predictions))
	}
	return decoded.Predictions[0], nil
}

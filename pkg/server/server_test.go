package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/renderers/jsonmodel"
	"github.com/goliatone/go-laptopprice/pkg/server"
	"github.com/goliatone/go-laptopprice/pkg/testsupport"
)

type requestEvent struct {
	route  string
	method string
	status int
}

type captureMetrics struct {
	mu          sync.Mutex
	requests    []requestEvent
	rateLimited []string
}

func (c *captureMetrics) RecordPrediction(string, time.Duration) {}

func (c *captureMetrics) RecordRequest(route, method string, status int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, requestEvent{route: route, method: method, status: status})
}

func (c *captureMetrics) RecordRateLimited(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateLimited = append(c.rateLimited, route)
}

func newHandler(t *testing.T, pipeline inference.Pipeline, options ...server.Option) http.Handler {
	t.Helper()
	if pipeline == nil {
		pipeline = testsupport.SamplePipeline(t)
	}
	orch := orchestrator.New(
		orchestrator.WithPipeline(pipeline),
		orchestrator.WithChoices(dataset.ChoicesFrom(testsupport.SampleDataset(t))),
	)
	return server.New(orch, options...).Handler()
}

func formBody(raw feature.RawInputs) string {
	values := url.Values{}
	for key, value := range raw {
		values.Set(key, value)
	}
	return values.Encode()
}

func postForm(handler http.Handler, path string, raw feature.RawInputs) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(formBody(raw)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_IndexRendersForm(t *testing.T) {
	handler := newHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="lp-predictPrice"`)
	assert.Contains(t, body, `<option value="Dell">Dell</option>`)
	assert.NotContains(t, body, "lp-outcome")
}

func TestServer_IndexNegotiatesJSON(t *testing.T) {
	handler := newHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc jsonmodel.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "predictPrice", doc.Form.OperationID)
	assert.Len(t, doc.Form.Fields, len(feature.RequiredFields))
}

func TestServer_UnknownPathIsNotFound(t *testing.T) {
	handler := newHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PredictPageSuccess(t *testing.T) {
	recorder := &captureMetrics{}
	handler := newHandler(t, nil, server.WithMetrics(recorder))

	rec := postForm(handler, "/predict", testsupport.DellInputs())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-price="60185"`)
	assert.Contains(t, body, "60,185")
	assert.Contains(t, body, `<option value="Dell" selected>Dell</option>`)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.requests, 1)
	assert.Equal(t, requestEvent{route: "POST /predict", method: http.MethodPost, status: http.StatusOK}, recorder.requests[0])
}

func TestServer_PredictPageInvalidResolution(t *testing.T) {
	handler := newHandler(t, nil)

	raw := testsupport.DellInputs()
	raw[feature.FieldResolution] = "invalid"
	rec := postForm(handler, "/predict", raw)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lp-outcome--error")
	assert.Contains(t, body, `data-field="resolution"`)
	assert.Contains(t, body, `lp-field--invalid`)
	assert.Contains(t, body, `value="invalid"`)
}

func TestServer_PredictAPIJSON(t *testing.T) {
	handler := newHandler(t, nil)

	payload := map[string]any{}
	for key, value := range testsupport.DellInputs() {
		payload[key] = value
	}
	payload[feature.FieldRAM] = 8
	payload[feature.FieldTouchscreen] = false
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price":60185}`, rec.Body.String())
}

func TestServer_PredictAPIForm(t *testing.T) {
	handler := newHandler(t, nil)

	rec := postForm(handler, "/api/predict", testsupport.DellInputs())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"price":60185}`, rec.Body.String())
}

func TestServer_PredictAPIValidationFailure(t *testing.T) {
	handler := newHandler(t, nil)

	raw := testsupport.DellInputs()
	delete(raw, feature.FieldWeight)
	rec := postForm(handler, "/api/predict", raw)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp server.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Price)
	assert.Equal(t, feature.FieldWeight, resp.Field)
	assert.Contains(t, resp.Error, "weight")
}

func TestServer_PredictAPIPipelineFailure(t *testing.T) {
	failing := inference.PipelineFunc(func(_ context.Context, _ feature.Vector) (float64, error) {
		return 0, errors.New("model exploded")
	})
	handler := newHandler(t, failing)

	rec := postForm(handler, "/api/predict", testsupport.DellInputs())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp server.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "model exploded")
	assert.Empty(t, resp.Field)
}

func TestServer_PredictAPIRejectsBadBodies(t *testing.T) {
	handler := newHandler(t, nil)

	cases := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{name: "malformed json", contentType: "application/json", body: "{", status: http.StatusBadRequest},
		{name: "nested value", contentType: "application/json", body: `{"company":{"name":"Dell"}}`, status: http.StatusBadRequest},
		{name: "unsupported type", contentType: "text/plain", body: "company=Dell", status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var resp server.PredictResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestServer_RateLimit(t *testing.T) {
	recorder := &captureMetrics{}
	handler := newHandler(t, nil,
		server.WithMetrics(recorder),
		server.WithRateLimit(0.001, 1),
	)

	first := postForm(handler, "/api/predict", testsupport.DellInputs())
	second := postForm(handler, "/api/predict", testsupport.DellInputs())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "form page is not rate limited")

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	assert.Equal(t, []string{"POST /api/predict"}, recorder.rateLimited)
}

func TestServer_FormModelEndpoint(t *testing.T) {
	handler := newHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/form?theme=default&variant=dark", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var doc jsonmodel.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/predict", doc.Form.Endpoint)
	assert.Nil(t, doc.Outcome)
}

func TestServer_ChoicesEndpoint(t *testing.T) {
	handler := newHandler(t, nil, server.WithChoices(dataset.ChoicesFrom(testsupport.SampleDataset(t))))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/choices/resolution?q=2560", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"field":"resolution","data":[{"value":"2560x1600","label":"2560x1600"},{"value":"2560x1440","label":"2560x1440"}]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/choices/weight", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StaticRoutes(t *testing.T) {
	handler := newHandler(t, nil, server.WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})))

	cases := []struct {
		path     string
		contains string
	}{
		{path: "/healthz", contains: "ok"},
		{path: "/openapi.yaml", contains: "predictPrice"},
		{path: "/assets/laptopprice.css", contains: ".lp-"},
		{path: "/metrics", contains: "# metrics"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.contains)
		})
	}
}

type panickingService struct {
	server.Service
}

func (panickingService) Predict(context.Context, feature.RawInputs) inference.Result {
	panic("boom")
}

func TestServer_RecoversFromPanic(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithPipeline(testsupport.SamplePipeline(t)))
	handler := server.New(panickingService{Service: orch}).Handler()

	rec := postForm(handler, "/api/predict", testsupport.DellInputs())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), http.StatusText(http.StatusInternalServerError))
}

package pipeline_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/pipeline"
)

func TestRemote_PostsSingleRowFrame(t *testing.T) {
	var received pipeline.RemoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"predictions":[10.5]}`))
	}))
	defer server.Close()

	remote, err := pipeline.NewRemote(server.URL, pipeline.WithHeader("X-Api-Key", "secret"))
	require.NoError(t, err)

	got, err := remote.Predict(context.Background(), dellVector())
	require.NoError(t, err)
	assert.Equal(t, 10.5, got)

	assert.Equal(t, feature.Columns(), received.Columns)
	require.Len(t, received.Data, 1)
	require.Len(t, received.Data[0], len(feature.Columns()))
	assert.Equal(t, "Dell", received.Data[0][0])
	assert.Equal(t, float64(8), received.Data[0][2])
	assert.Equal(t, "Windows", received.Data[0][11])
}

func TestRemote_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model unavailable", http.StatusServiceUnavailable)
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"predictions":`))
		},
		"row count": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"predictions":[1,2]}`))
		},
		"empty": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"predictions":[]}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			remote, err := pipeline.NewRemote(server.URL)
			require.NoError(t, err)

			_, err = remote.Predict(context.Background(), dellVector())
			require.Error(t, err)
		})
	}
}

func TestRemote_StatusErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown category", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	remote, err := pipeline.NewRemote(server.URL)
	require.NoError(t, err)

	_, err = remote.Predict(context.Background(), dellVector())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "unknown category")
}

func TestRemote_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	remote, err := pipeline.NewRemote(server.URL, pipeline.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = remote.Predict(context.Background(), dellVector())
	require.Error(t, err)
}

func TestNewRemote_ValidatesEndpoint(t *testing.T) {
	_, err := pipeline.NewRemote("")
	require.Error(t, err)

	_, err = pipeline.NewRemote("ftp://models.local/predict")
	require.Error(t, err)
}

func TestDecode_RemoteArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"predictions":[0]}`))
	}))
	defer server.Close()

	data := []byte("kind: remote\nurl: " + server.URL + "\nheaders:\n  Authorization: Bearer token\n")
	decoded, err := pipeline.Decode(data, pipeline.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	got, err := decoded.Predict(context.Background(), dellVector())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

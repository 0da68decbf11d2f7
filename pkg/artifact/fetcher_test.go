package artifact_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-laptopprice/pkg/artifact"
)

type memoryObjects map[string][]byte

func (m memoryObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m[bucket+"/"+key]
	if !ok {
		return nil, artifact.ErrNotFound
	}
	return data, nil
}

func TestFetch_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: linear\n"), 0o644))

	data, err := artifact.NewFetcher().Fetch(context.Background(), artifact.SourceFromFile(path))
	require.NoError(t, err)
	assert.Equal(t, "kind: linear\n", string(data))
}

func TestFetch_MissingFileIsNotFound(t *testing.T) {
	_, err := artifact.NewFetcher().Fetch(context.Background(), artifact.SourceFromFile(filepath.Join(t.TempDir(), "pipe.pkl")))
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestFetch_FS(t *testing.T) {
	files := fstest.MapFS{"laptops.csv": {Data: []byte("Company\nDell\n")}}
	fetcher := artifact.NewFetcher(artifact.WithFileSystem(files))

	data, err := fetcher.Fetch(context.Background(), artifact.SourceFromFS("laptops.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Company\nDell\n", string(data))

	_, err = fetcher.Fetch(context.Background(), artifact.SourceFromFS("df.pkl"))
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestFetch_FSRequiresFileSystem(t *testing.T) {
	_, err := artifact.NewFetcher().Fetch(context.Background(), artifact.SourceFromFS("laptops.csv"))
	require.Error(t, err)
}

func TestFetch_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pipeline.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("kind: remote\n"))
	}))
	defer server.Close()

	fetcher := artifact.NewFetcher(artifact.WithHTTPClient(server.Client()))

	data, err := fetcher.Fetch(context.Background(), artifact.SourceFromURL(server.URL+"/pipeline.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kind: remote\n", string(data))

	_, err = fetcher.Fetch(context.Background(), artifact.SourceFromURL(server.URL+"/missing.yaml"))
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestFetch_HTTPDisabledByDefault(t *testing.T) {
	_, err := artifact.NewFetcher().Fetch(context.Background(), artifact.SourceFromURL("http://127.0.0.1:1/pipe.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http support disabled")
}

func TestFetch_ObjectStorage(t *testing.T) {
	objects := memoryObjects{"models/laptops/pipeline.yaml": []byte("kind: linear\n")}
	fetcher := artifact.NewFetcher(artifact.WithObjectGetter(objects))

	data, err := fetcher.Fetch(context.Background(), artifact.SourceFromS3("models", "laptops/pipeline.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kind: linear\n", string(data))

	_, err = fetcher.Fetch(context.Background(), artifact.SourceFromS3("models", "missing"))
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestFetch_ObjectStorageRequiresGetter(t *testing.T) {
	_, err := artifact.NewFetcher().Fetch(context.Background(), artifact.SourceFromS3("models", "pipeline.yaml"))
	require.Error(t, err)
}

func TestFetch_NilSource(t *testing.T) {
	_, err := artifact.NewFetcher().Fetch(context.Background(), nil)
	require.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func TestS3Getter(t *testing.T) {
	getter := artifact.NewS3Getter(&fakeS3{objects: map[string][]byte{
		"models/pipeline.yaml": []byte("kind: linear\n"),
	}})

	data, err := getter.GetObject(context.Background(), "models", "pipeline.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kind: linear\n", string(data))

	_, err = getter.GetObject(context.Background(), "models", "missing.yaml")
	assert.True(t, errors.Is(err, artifact.ErrNotFound), "got %v", err)
}

package loader_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/gzip"

	"github.com/goliatone/go-laptopprice/api"
	"github.com/goliatone/go-laptopprice/internal/openapi/loader"
	"github.com/goliatone/go-laptopprice/pkg/artifact"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestLoader_LoadsFromFS(t *testing.T) {
	raw := api.Document()
	files := fstest.MapFS{
		"openapi.yaml":    {Data: raw},
		"openapi.yaml.gz": {Data: gzipped(t, raw)},
	}
	l := loader.New(artifact.NewFetcher(artifact.WithFileSystem(files)))

	for _, name := range []string{"openapi.yaml", "openapi.yaml.gz"} {
		doc, err := l.Load(context.Background(), artifact.SourceFromFS(name))
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if !bytes.Equal(doc.Raw(), raw) {
			t.Fatalf("%s: payload mismatch", name)
		}
		if doc.Location() != name {
			t.Fatalf("%s: location = %q", name, doc.Location())
		}
	}
}

func TestLoader_NotFound(t *testing.T) {
	l := loader.New(artifact.NewFetcher(artifact.WithFileSystem(fstest.MapFS{})))

	_, err := l.Load(context.Background(), artifact.SourceFromFS("missing.yaml"))
	if !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoader_RejectsEmptyDocument(t *testing.T) {
	files := fstest.MapFS{"empty.yaml": {Data: nil}}
	l := loader.New(artifact.NewFetcher(artifact.WithFileSystem(files)))

	if _, err := l.Load(context.Background(), artifact.SourceFromFS("empty.yaml")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestLoader_NilSource(t *testing.T) {
	if _, err := loader.New(nil).Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-laptopprice/pkg/artifact"
	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
)

// Loader implements pkgopenapi.Loader by delegating the transport to an
// artifact.Fetcher, so documents can come from files, fs.FS, HTTP or object
// storage.
type Loader struct {
	fetcher artifact.Fetcher
}

// Ensure the implementation satisfies the public interface.
var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader. A nil fetcher falls back to artifact.NewFetcher()
// which reads files only.
func New(fetcher artifact.Fetcher) *Loader {
	if fetcher == nil {
		fetcher = artifact.NewFetcher()
	}
	return &Loader{fetcher: fetcher}
}

// Load fetches a document from the provided source, decompresses it when the
// location carries a compression suffix, and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src artifact.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}

	data, err := l.fetcher.Fetch(ctx, src)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %w", err)
	}
	data, err = artifact.Decode(src.Location(), data)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %w", err)
	}

	return pkgopenapi.NewDocument(src, data)
}

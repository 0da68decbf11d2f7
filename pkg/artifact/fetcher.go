// Package artifact fetches the startup artifacts (trained pipeline and
// reference dataset) from files, fs.FS, HTTP or object storage, decompresses
// them and reports failures as InitializationError.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"
)

// ErrNotFound is returned when the artifact does not exist at its location.
var ErrNotFound = errors.New("artifact: not found")

// Fetcher retrieves the raw bytes behind a Source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]byte, error)
}

// ObjectGetter reads whole objects from an S3-compatible store.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// FetcherOptions collects the strategies a Fetcher may use. Unset strategies
// are disabled.
type FetcherOptions struct {
	// FileSystem resolves fs: sources.
	FileSystem fs.FS

	// HTTPClient resolves http(s) sources.
	HTTPClient *http.Client

	// RequestTimeout caps each HTTP or object storage fetch.
	RequestTimeout time.Duration

	// Objects resolves s3:// sources.
	Objects ObjectGetter

	Logger *slog.Logger
}

// FetcherOption mutates FetcherOptions prior to construction.
type FetcherOption func(*FetcherOptions)

// WithFileSystem injects the fs.FS used for fs: sources.
func WithFileSystem(files fs.FS) FetcherOption {
	return func(opts *FetcherOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient enables http(s) sources through client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(opts *FetcherOptions) {
		opts.HTTPClient = client
	}
}

// WithRequestTimeout bounds remote fetches.
func WithRequestTimeout(timeout time.Duration) FetcherOption {
	return func(opts *FetcherOptions) {
		opts.RequestTimeout = timeout
	}
}

// WithObjectGetter enables s3:// sources.
func WithObjectGetter(getter ObjectGetter) FetcherOption {
	return func(opts *FetcherOptions) {
		opts.Objects = getter
	}
}

// WithLogger routes fetch diagnostics to logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(opts *FetcherOptions) {
		opts.Logger = logger
	}
}

// DefaultFetcher dispatches a Source to the matching strategy.
type DefaultFetcher struct {
	fs      fs.FS
	http    *http.Client
	objects ObjectGetter
	timeout time.Duration
	logger  *slog.Logger
}

var _ Fetcher = (*DefaultFetcher)(nil)

// NewFetcher constructs a DefaultFetcher. File sources are always enabled.
func NewFetcher(options ...FetcherOption) *DefaultFetcher {
	cfg := FetcherOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var client *http.Client
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		if cfg.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = cfg.RequestTimeout
		}
		client = &clone
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DefaultFetcher{
		fs:      cfg.FileSystem,
		http:    client,
		objects: cfg.Objects,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}
}

// Fetch reads src using the strategy matching its kind.
func (f *DefaultFetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("artifact fetcher: source is nil")
	}

	started := time.Now()
	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, f.fs, src.Location())
	case SourceKindURL:
		data, err = loadHTTP(ctx, f.http, src.Location(), f.timeout)
	case SourceKindS3:
		data, err = f.loadObject(ctx, src)
	default:
		err = fmt.Errorf("artifact fetcher: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, err
	}

	f.logger.Debug("artifact fetched",
		"kind", string(src.Kind()),
		"location", src.Location(),
		"bytes", len(data),
		"duration", time.Since(started),
	)
	return data, nil
}

func (f *DefaultFetcher) loadObject(ctx context.Context, src Source) ([]byte, error) {
	if f.objects == nil {
		return nil, errors.New("artifact fetcher: object storage is not configured")
	}
	obj, ok := src.(ObjectSource)
	if !ok {
		parsed, err := ParseSource(src.Location())
		if err != nil {
			return nil, err
		}
		if obj, ok = parsed.(ObjectSource); !ok {
			return nil, fmt.Errorf("artifact fetcher: %q is not an object location", src.Location())
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.objects.GetObject(ctx, obj.Bucket, obj.Key)
}

package artifact

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where an artifact lives so fetchers can operate on files,
// fs.FS entries, URLs or object storage without leaking transport details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the fetch modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	SourceKindS3   SourceKind = "s3"
)

const (
	schemeS3 = "s3://"
	schemeFS = "fs:"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside the fetcher's
// fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("artifact: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("artifact: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

// ObjectSource is a Source addressing a bucket and key in object storage.
type ObjectSource struct {
	Bucket string
	Key    string
}

// Location renders the object as an s3:// URL.
func (s ObjectSource) Location() string { return schemeS3 + s.Bucket + "/" + s.Key }

// Kind reports SourceKindS3.
func (s ObjectSource) Kind() SourceKind { return SourceKindS3 }

// SourceFromS3 returns a Source for bucket/key.
func SourceFromS3(bucket, key string) Source {
	return ObjectSource{Bucket: bucket, Key: strings.TrimPrefix(key, "/")}
}

// ParseSource picks the source kind from raw: "s3://bucket/key",
// "http(s)://...", "fs:name" for the fetcher's fs.FS, and a file path
// otherwise.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("artifact: source location is empty")
	}

	switch {
	case strings.HasPrefix(raw, schemeS3):
		rest := strings.TrimPrefix(raw, schemeS3)
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || strings.Trim(key, "/") == "" {
			return nil, fmt.Errorf("artifact: s3 location %q must be s3://bucket/key", raw)
		}
		return SourceFromS3(bucket, key), nil
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("artifact: invalid URL %q: %w", raw, err)
		}
		return urlSource{raw: raw}, nil
	case strings.HasPrefix(raw, schemeFS):
		name := strings.TrimPrefix(raw, schemeFS)
		if name == "" {
			return nil, fmt.Errorf("artifact: fs location %q has no name", raw)
		}
		return SourceFromFS(name), nil
	default:
		return SourceFromFile(raw), nil
	}
}

package artifact

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// InitializationError reports an artifact that could not be fetched, decoded
// or parsed at startup. The process must not serve requests after one.
type InitializationError struct {
	Artifact string
	Location string
	Err      error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("artifact: initialise %s from %s: %v", e.Artifact, e.Location, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// IsInitializationError reports whether err carries an *InitializationError.
func IsInitializationError(err error) bool {
	var target *InitializationError
	return errors.As(err, &target)
}

// Request names one artifact to load and how to decode it. Decode receives
// the location with any compression extension stripped and the decompressed
// bytes.
type Request struct {
	Name   string
	Source Source
	Decode func(name string, data []byte) error
}

// LoadAll fetches and decodes every request concurrently. The first failure
// cancels the rest and is returned as *InitializationError.
func LoadAll(ctx context.Context, fetcher Fetcher, requests ...Request) error {
	if fetcher == nil {
		return &InitializationError{Artifact: "fetcher", Err: errors.New("fetcher is nil")}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range requests {
		g.Go(func() error {
			return load(gctx, fetcher, req)
		})
	}
	return g.Wait()
}

func load(ctx context.Context, fetcher Fetcher, req Request) error {
	fail := func(err error) error {
		location := ""
		if req.Source != nil {
			location = req.Source.Location()
		}
		return &InitializationError{Artifact: req.Name, Location: location, Err: err}
	}

	if req.Source == nil {
		return fail(errors.New("source is not configured"))
	}
	if req.Decode == nil {
		return fail(errors.New("decoder is not configured"))
	}

	raw, err := fetcher.Fetch(ctx, req.Source)
	if err != nil {
		return fail(err)
	}
	data, err := Decode(req.Source.Location(), raw)
	if err != nil {
		return fail(err)
	}
	if len(data) == 0 {
		return fail(errors.New("artifact is empty"))
	}
	if err := req.Decode(StripCompression(req.Source.Location()), data); err != nil {
		return fail(err)
	}
	return nil
}

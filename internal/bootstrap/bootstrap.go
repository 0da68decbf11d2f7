// Package bootstrap turns a config.Config into the loaded pipeline and
// reference dataset shared by the server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-laptopprice/internal/logging"
	"github.com/goliatone/go-laptopprice/pkg/artifact"
	"github.com/goliatone/go-laptopprice/pkg/config"
	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/pipeline"
	"github.com/goliatone/go-laptopprice/samples"
)

const (
	// PipelineArtifact and DatasetArtifact name the startup artifacts in logs
	// and errors.
	PipelineArtifact = "pipeline"
	DatasetArtifact  = "dataset"

	samplesPrefix = "fs:"
)

// Artifacts holds everything loaded at startup.
type Artifacts struct {
	Pipeline inference.Pipeline
	Dataset  *dataset.Dataset
}

// Choices returns the form option lists derived from the dataset.
func (a Artifacts) Choices() dataset.Choices {
	return dataset.ChoicesFrom(a.Dataset)
}

// PipelineLocation returns the configured pipeline location or the embedded
// sample.
func PipelineLocation(cfg config.Config) string {
	if location := strings.TrimSpace(cfg.Artifacts.Pipeline); location != "" {
		return location
	}
	return samplesPrefix + samples.PipelinePath
}

// DatasetLocation returns the configured dataset location or the embedded
// sample.
func DatasetLocation(cfg config.Config) string {
	if location := strings.TrimSpace(cfg.Artifacts.Dataset); location != "" {
		return location
	}
	return samplesPrefix + samples.DatasetPath
}

// NewFetcher builds a fetcher able to resolve every configured location. fs:
// locations read the embedded samples.
func NewFetcher(ctx context.Context, cfg config.Config, logger *logging.Logger) (*artifact.DefaultFetcher, error) {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	options := []artifact.FetcherOption{
		artifact.WithFileSystem(samples.FS),
		artifact.WithHTTPClient(http.DefaultClient),
		artifact.WithRequestTimeout(cfg.Artifacts.Timeout),
		artifact.WithLogger(logger.WithComponent("artifact").Logger),
	}

	if cfg.UsesObjectStorage() {
		getter, err := objectGetter(ctx, cfg.Artifacts.Storage)
		if err != nil {
			return nil, err
		}
		options = append(options, artifact.WithObjectGetter(getter))
	}
	return artifact.NewFetcher(options...), nil
}

func objectGetter(ctx context.Context, storage config.Storage) (artifact.ObjectGetter, error) {
	if storage.Endpoint != "" {
		return artifact.NewMinioGetter(artifact.MinioConfig{
			Endpoint:  storage.Endpoint,
			AccessKey: storage.AccessKey,
			SecretKey: storage.SecretKey,
			Region:    storage.Region,
			Secure:    storage.Secure,
		})
	}
	return artifact.NewS3GetterFromEnv(ctx, storage.Region)
}

// Load fetches and decodes the pipeline and dataset concurrently. With a
// remote inference URL configured the pipeline artifact is skipped. Any
// failure is an *artifact.InitializationError.
func Load(ctx context.Context, cfg config.Config, fetcher artifact.Fetcher, logger *logging.Logger) (Artifacts, error) {
	if logger == nil {
		logger = logging.NoopLogger()
	}

	var (
		mu     sync.Mutex
		loaded Artifacts
	)

	requests := []artifact.Request{}
	locations := map[string]string{}

	if remoteURL := strings.TrimSpace(cfg.Inference.RemoteURL); remoteURL != "" {
		remote, err := pipeline.NewRemote(remoteURL,
			pipeline.WithTimeout(cfg.Inference.Timeout),
			pipeline.WithLogger(logger.WithComponent("pipeline").Logger),
		)
		if err != nil {
			return Artifacts{}, &artifact.InitializationError{Artifact: PipelineArtifact, Location: remoteURL, Err: err}
		}
		loaded.Pipeline = remote
	} else {
		src, err := parse(PipelineArtifact, PipelineLocation(cfg))
		if err != nil {
			return Artifacts{}, err
		}
		locations[PipelineArtifact] = src.Location()
		requests = append(requests, artifact.Request{
			Name:   PipelineArtifact,
			Source: src,
			Decode: func(_ string, data []byte) error {
				decoded, err := pipeline.Decode(data,
					pipeline.WithTimeout(cfg.Inference.Timeout),
					pipeline.WithLogger(logger.WithComponent("pipeline").Logger),
				)
				if err != nil {
					return err
				}
				mu.Lock()
				loaded.Pipeline = decoded
				mu.Unlock()
				return nil
			},
		})
	}

	src, err := parse(DatasetArtifact, DatasetLocation(cfg))
	if err != nil {
		return Artifacts{}, err
	}
	locations[DatasetArtifact] = src.Location()
	requests = append(requests, artifact.Request{
		Name:   DatasetArtifact,
		Source: src,
		Decode: func(name string, data []byte) error {
			ds, err := dataset.ParseNamed(name, data)
			if err != nil {
				return err
			}
			mu.Lock()
			loaded.Dataset = ds
			mu.Unlock()
			return nil
		},
	})

	started := time.Now()
	err = artifact.LoadAll(ctx, fetcher, requests...)
	elapsed := time.Since(started)

	var initErr *artifact.InitializationError
	failed := ""
	if errors.As(err, &initErr) {
		failed = initErr.Artifact
	}
	for _, req := range requests {
		var logErr error
		if req.Name == failed {
			logErr = err
		}
		logger.LogArtifact(ctx, req.Name, locations[req.Name], elapsed, logErr)
	}
	if err != nil {
		return Artifacts{}, err
	}
	return loaded, nil
}

func parse(name, location string) (artifact.Source, error) {
	src, err := artifact.ParseSource(location)
	if err != nil {
		return nil, &artifact.InitializationError{Artifact: name, Location: location, Err: fmt.Errorf("parse location: %w", err)}
	}
	return src, nil
}

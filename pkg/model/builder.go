package model

import (
	"github.com/goliatone/go-laptopprice/internal/model"
	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
)

// Builder converts OpenAPI operations into form models.
type Builder interface {
	Build(op pkgopenapi.Operation) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler      func(string) string
	ignoreTitles bool
}

// WithLabeler overrides the default label generation function. Schema titles
// still win unless WithoutTitles is also given.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithoutTitles derives every label from the field name.
func WithoutTitles() BuilderOption {
	return func(opts *builderOptions) {
		opts.ignoreTitles = true
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}

	internalOpts := model.Options{
		Labeler:      cfg.labeler,
		PreferTitles: !cfg.ignoreTitles,
	}
	if internalOpts.Labeler == nil && cfg.ignoreTitles {
		internalOpts.Labeler = model.DefaultLabeler
	}

	return model.New(internalOpts)
}

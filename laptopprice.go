// Package laptopprice is the top-level entry point for embedding the laptop
// price form and predictor in another program.
package laptopprice

import (
	"context"
	"io/fs"

	internalLoader "github.com/goliatone/go-laptopprice/internal/openapi/loader"
	internalParser "github.com/goliatone/go-laptopprice/internal/openapi/parser"
	"github.com/goliatone/go-laptopprice/pkg/artifact"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/render"
	"github.com/goliatone/go-laptopprice/pkg/renderers/vanilla"
)

// RenderOptions describes per-request values, errors and outcome passed to
// renderers.
type RenderOptions = render.RenderOptions

// RawInputs maps form field names to submitted values.
type RawInputs = feature.RawInputs

// Result is a predicted price or the reason there is none.
type Result = inference.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a document loader backed by fetcher.
func NewLoader(fetcher artifact.Fetcher) pkgopenapi.Loader {
	return internalLoader.New(fetcher)
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// Predict validates raw and runs pipeline on the resulting feature vector.
func Predict(ctx context.Context, pipeline inference.Pipeline, raw RawInputs) Result {
	return orchestrator.New(orchestrator.WithPipeline(pipeline)).Predict(ctx, raw)
}

// RenderHTML renders the prediction page, with result when it is not nil,
// using the embedded document and templates.
func RenderHTML(ctx context.Context, raw RawInputs, result *Result, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Render(ctx, orchestrator.Request{
		Renderer: vanilla.Name,
		Inputs:   raw,
		Result:   result,
	})
}

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or override them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the built-in stylesheet.
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}

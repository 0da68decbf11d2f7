package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-laptopprice/api"
	"github.com/goliatone/go-laptopprice/internal/logging"
	internalLoader "github.com/goliatone/go-laptopprice/internal/openapi/loader"
	internalParser "github.com/goliatone/go-laptopprice/internal/openapi/parser"
	"github.com/goliatone/go-laptopprice/pkg/artifact"
	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/metrics"
	"github.com/goliatone/go-laptopprice/pkg/model"
	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
	"github.com/goliatone/go-laptopprice/pkg/render"
	"github.com/goliatone/go-laptopprice/pkg/renderers/jsonmodel"
	"github.com/goliatone/go-laptopprice/pkg/renderers/vanilla"
)

const defaultRendererName = vanilla.Name

// Invoker runs a prediction for a feature vector.
type Invoker interface {
	Invoke(ctx context.Context, vector feature.Vector) inference.Result
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithDocumentSource reads the form's OpenAPI document from src instead of
// the embedded one.
func WithDocumentSource(src artifact.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithDocument supplies an already loaded document, bypassing the loader.
func WithDocument(doc pkgopenapi.Document) Option {
	return func(o *Orchestrator) {
		o.document = &doc
	}
}

// WithOperationID selects the operation the form is generated from.
func WithOperationID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.operationID = id
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers transformers that mutate the form model after
// building, in registration order, before decorators run.
func WithTransformer(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		for _, t := range transformers {
			if t != nil {
				o.transformers = append(o.transformers, t)
			}
		}
	}
}

// WithChoices fills the form's choice lists from choices.
func WithChoices(choices dataset.Choices) Option {
	return WithTransformer(NewChoicesTransformer(choices))
}

// WithDecorators registers decorators that run against the generated form
// model before rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithPipeline predicts through pipeline using the default invoker.
func WithPipeline(pipeline inference.Pipeline) Option {
	return func(o *Orchestrator) {
		o.pipeline = pipeline
	}
}

// WithInvoker replaces the inference invoker.
func WithInvoker(invoker Invoker) Option {
	return func(o *Orchestrator) {
		o.invoker = invoker
	}
}

// WithThemeSelector resolves theme and variant choices ahead of rendering.
func WithThemeSelector(selector ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithTheme sets the theme used when a request names none.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithThemeFallbacks replaces the partials used when a theme does not
// override them.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = mergeStringMap(nil, fallbacks)
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = &logging.Logger{Logger: logger}
		}
	}
}

// WithMetrics records prediction outcomes into recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// Orchestrator coordinates form generation and prediction. It applies
// sensible defaults (embedded document, vanilla and json renderers) while
// remaining open to dependency injection. It is safe for concurrent use once
// constructed.
type Orchestrator struct {
	loader          pkgopenapi.Loader
	parser          pkgopenapi.Parser
	builder         model.Builder
	source          artifact.Source
	document        *pkgopenapi.Document
	operationID     string
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	decorators      []model.Decorator
	pipeline        inference.Pipeline
	invoker         Invoker
	themeSelector   ThemeSelector
	themeFallbacks  map[string]string
	defaultTheme    string
	defaultVariant  string
	logger          *logging.Logger
	metrics         metrics.Recorder
	initialiseErr   error

	mu   sync.Mutex
	form *model.FormModel
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		operationID:     api.PredictOperation,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Inputs repopulates the form controls.
	Inputs feature.RawInputs

	// Result is the prediction to display. Its error, if any, is attached to
	// the field it names or shown at form level.
	Result *inference.Result

	// FormErrors adds form-level messages.
	FormErrors []string

	// ThemeName and ThemeVariant override the configured theme.
	ThemeName    string
	ThemeVariant string
}

// Form returns the prediction form model. The model is built once and a copy
// is returned on every call.
func (o *Orchestrator) Form(ctx context.Context) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.form != nil {
		return cloneForm(*o.form), nil
	}

	form, err := o.buildForm(ctx)
	if err != nil {
		return model.FormModel{}, err
	}
	o.form = &form
	return cloneForm(form), nil
}

func (o *Orchestrator) buildForm(ctx context.Context) (model.FormModel, error) {
	doc, err := o.resolveDocument(ctx)
	if err != nil {
		return model.FormModel{}, err
	}

	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: parse operations: %w", err)
	}
	op, ok := operations[o.operationID]
	if !ok {
		return model.FormModel{}, fmt.Errorf("orchestrator: operation %q not found", o.operationID)
	}

	form, err := o.builder.Build(op)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.applyTransformers(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

// Render renders the form through the requested renderer.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Form(ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := render.RenderOptions{
		Values:     render.ValuesFrom(req.Inputs),
		FormErrors: req.FormErrors,
	}
	if req.Result != nil {
		options.Outcome = render.OutcomeFrom(*req.Result)
		options.Errors = render.MapFieldErrors(form, req.Result.Err()).Fields
	}
	if options.Theme, err = o.resolveTheme(req.ThemeName, req.ThemeVariant); err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Predict builds the feature vector from raw and invokes the pipeline. Every
// failure is returned inside the Result.
func (o *Orchestrator) Predict(ctx context.Context, raw feature.RawInputs) inference.Result {
	started := time.Now()

	var result inference.Result
	if ctx == nil {
		err := errors.New("orchestrator: context is required")
		result = inference.Failure(&inference.PredictionError{Message: err.Error(), Err: err})
		ctx = context.Background()
	} else if err := ctx.Err(); err != nil {
		result = inference.Failure(&inference.PredictionError{Message: err.Error(), Err: err})
	} else if vector, err := feature.Build(raw); err != nil {
		result = inference.Failure(err)
	} else {
		result = o.invoker.Invoke(ctx, vector)
	}

	elapsed := time.Since(started)
	price, _ := result.Price()
	o.logger.LogPrediction(ctx, price, elapsed, result.Err())
	o.metrics.RecordPrediction(metrics.Outcome(result.Err()), elapsed)
	return result
}

// Renderer returns the named renderer, or the default one when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// Registry exposes the renderer registry, for content negotiation.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) resolveDocument(ctx context.Context) (pkgopenapi.Document, error) {
	if o.document != nil {
		return *o.document, nil
	}
	doc, err := o.loader.Load(ctx, o.source)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.defaultTheme
	}
	if variant == "" {
		variant = o.defaultVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, form *model.FormModel) error {
	for _, t := range o.transformers {
		if err := t.Transform(ctx, form); err != nil {
			return fmt.Errorf("orchestrator: transform form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = logging.NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = metrics.Noop{}
	}
	if o.source == nil {
		o.source = artifact.SourceFromFS(api.DocumentPath)
		if o.loader == nil {
			o.loader = internalLoader.New(artifact.NewFetcher(artifact.WithFileSystem(api.FS)))
		}
	}
	if o.loader == nil {
		o.loader = internalLoader.New(nil)
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.invoker == nil {
		o.invoker = inference.New(o.pipeline, inference.WithLogger(o.logger.Logger))
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(jsonmodel.New())
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

func cloneForm(form model.FormModel) model.FormModel {
	clone := form
	clone.Metadata = mergeStringMap(nil, form.Metadata)
	clone.Fields = make([]model.Field, len(form.Fields))
	for i, field := range form.Fields {
		field.UIHints = mergeStringMap(nil, field.UIHints)
		field.Enum = append([]any(nil), field.Enum...)
		field.Validations = append([]model.ValidationRule(nil), field.Validations...)
		clone.Fields[i] = field
	}
	return clone
}

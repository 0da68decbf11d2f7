package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/render"
	rendertemplate "github.com/goliatone/go-laptopprice/pkg/render/template"
	gotemplate "github.com/goliatone/go-laptopprice/pkg/render/template/gotemplate"
)

const (
	// Name is the registry name of the renderer.
	Name = "vanilla"

	defaultStylesheetURL = "/assets/" + StylesheetName
	defaultCurrency      = "₹ "
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheets      []string
	inlineStyles     bool
	currency         string
	policy           *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet replaces the linked stylesheets. Call it repeatedly to link
// several; an empty href links none.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if cfg.stylesheets == nil {
			cfg.stylesheets = []string{}
		}
		if href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithInlineStyles embeds the default stylesheet in the page instead of
// linking it, for pages served without the asset route.
func WithInlineStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
		if cfg.stylesheets == nil {
			cfg.stylesheets = []string{}
		}
	}
}

// WithCurrency sets the prefix printed before predicted prices.
func WithCurrency(prefix string) Option {
	return func(cfg *config) {
		cfg.currency = prefix
	}
}

// WithSanitizer replaces the policy applied to help text.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer produces a full HTML page: the prediction form, its field errors
// and the outcome of the last prediction.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	stylesheets  []string
	inlineStyles bool
	currency     string
	policy       *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		currency:   defaultCurrency,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.stylesheets == nil {
		cfg.stylesheets = []string{defaultStylesheetURL}
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		stylesheets:  cfg.stylesheets,
		inlineStyles: cfg.inlineStyles,
		currency:     cfg.currency,
		policy:       cfg.policy,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the page for form. Values repopulate the controls, Errors
// mark fields invalid, and Outcome adds the result panel.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	partials := resolvePartials(options)

	fields := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		view := r.fieldView(field, options)
		markup, err := r.templates.RenderTemplate(partials[PartialField], map[string]any{"field": view})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render field %q: %w", field.Name, err)
		}
		fields = append(fields, markup)
	}

	page := r.pageView(form, options, fields)
	if options.Outcome != nil {
		markup, err := r.templates.RenderTemplate(partials[PartialOutcome], map[string]any{
			"outcome":  options.Outcome,
			"currency": r.currency,
		})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render outcome: %w", err)
		}
		page.OutcomeHTML = markup
	}

	result, err := r.templates.RenderTemplate(partials[PartialPage], map[string]any{"page": page})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

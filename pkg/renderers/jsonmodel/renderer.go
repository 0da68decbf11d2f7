// Package jsonmodel renders the form model, together with the per-request
// values, errors and outcome, as a JSON document for script clients.
package jsonmodel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "json"

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output using indent for each level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer emits Document values as JSON.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Document is the payload written by Render.
type Document struct {
	Form       model.FormModel     `json:"form"`
	Values     map[string]any      `json:"values,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
	Outcome    *render.Outcome     `json:"outcome,omitempty"`
	Theme      *Theme              `json:"theme,omitempty"`
}

// Theme is the subset of the theme selection useful to clients.
type Theme struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant,omitempty"`
	CSSVars map[string]string `json:"cssVars,omitempty"`
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := Document{
		Form:       form,
		Values:     options.Values,
		Errors:     options.Errors,
		FormErrors: render.MergeFormErrors(options.FormErrors),
		Outcome:    options.Outcome,
	}
	if cfg := options.Theme; cfg != nil {
		doc.Theme = &Theme{Name: cfg.Theme, Variant: cfg.Variant, CSSVars: cfg.CSSVars}
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonmodel renderer: encode: %w", err)
	}
	return out, nil
}

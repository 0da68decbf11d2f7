package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/model"
)

// Transformer mutates a FormModel before decorators run. Implementations can
// relabel fields, inject choices, or perform arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// ChoicesTransformer fills field enums from the reference dataset choice
// lists so the form offers only values the pipeline was trained on.
type ChoicesTransformer struct {
	choices dataset.Choices
}

// NewChoicesTransformer wraps choices.
func NewChoicesTransformer(choices dataset.Choices) *ChoicesTransformer {
	return &ChoicesTransformer{choices: choices}
}

// Transform applies the choice lists onto form.
func (t *ChoicesTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("choices transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	model.ApplyChoices(form, t.choices)
	return nil
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document:
//
//	metadata:
//	  submitLabel: Estimate
//	fields:
//	  company:
//	    label: Manufacturer
//	    uiHints: {help: As printed on the chassis}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Summary     string                `yaml:"summary" json:"summary"`
	Description string                `yaml:"description" json:"description"`
	Metadata    map[string]string     `yaml:"metadata" json:"metadata"`
	Fields      map[string]fieldPatch `yaml:"fields" json:"fields"`
}

type fieldPatch struct {
	Label       string            `yaml:"label" json:"label"`
	Description string            `yaml:"description" json:"description"`
	Placeholder string            `yaml:"placeholder" json:"placeholder"`
	UIHints     map[string]string `yaml:"uiHints" json:"uiHints"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied form. A patch
// naming a field the form lacks is an error.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Summary != "" {
		form.Summary = t.document.Summary
	}
	if t.document.Description != "" {
		form.Description = t.document.Description
	}
	if len(t.document.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, t.document.Metadata)
	}

	for name, patch := range t.document.Fields {
		field := findField(form.Fields, name)
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if len(patch.UIHints) > 0 {
		field.UIHints = mergeStringMap(field.UIHints, patch.UIHints)
	}
}

func findField(fields []model.Field, name string) *model.Field {
	name = strings.TrimSpace(name)
	for idx := range fields {
		if fields[idx].Name == name {
			return &fields[idx]
		}
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

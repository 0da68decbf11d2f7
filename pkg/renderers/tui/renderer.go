// Package tui renders the prediction form as a sequence of terminal prompts
// and serializes the answers as raw inputs.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions. Render
// prompts for every field and returns the answers rather than markup.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for each field in form order. Values prefill the prompts and
// Errors are printed before the field they belong to.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	for _, message := range render.MergeFormErrors(opts.FormErrors) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	state := NewState(opts.Values, opts.Errors)
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := state.Answers()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values, state.Order())
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, displayLabel(field), message)); err != nil {
			return err
		}
	}

	switch {
	case len(field.Enum) > 0:
		return r.promptEnum(ctx, field, state)
	case field.Type == model.FieldTypeInteger || field.Type == model.FieldTypeNumber:
		return r.promptNumber(ctx, field, state)
	default:
		return r.promptString(ctx, field, state)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, state *State) error {
	rules := collectValidationRules(field)
	return r.promptInput(ctx, field, state, rules.validateString)
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, state *State) error {
	rules := collectValidationRules(field)
	integer := field.Type == model.FieldTypeInteger
	return r.promptInput(ctx, field, state, func(input string) error {
		if strings.TrimSpace(input) == "" {
			return rules.validateString(input)
		}
		return rules.validateNumber(input, integer)
	})
}

func (r *Renderer) promptInput(ctx context.Context, field model.Field, state *State, validate func(string) error) error {
	label := displayLabel(field)
	defaultVal, _ := state.Value(field.Name)
	if defaultVal == "" && field.Default != nil {
		defaultVal = fmt.Sprint(field.Default)
	}

	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: defaultVal,
			Help:    displayHelp(field),
		})
		if err != nil {
			return err
		}
		if err := validate(response); err != nil {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.InfoPrefix, label, err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		state.Set(field.Name, response)
		return nil
	}
}

func (r *Renderer) promptEnum(ctx context.Context, field model.Field, state *State) error {
	label := displayLabel(field)
	options := stringifyEnum(field.Enum)
	defaultIdx := -1
	if current, ok := state.Value(field.Name); ok {
		defaultIdx = indexOf(options, current)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", r.theme.InfoPrefix, label)); infoErr != nil {
				return infoErr
			}
			continue
		}
		state.Set(field.Name, options[idx])
		return nil
	}
}

func (r *Renderer) serialize(values map[string]string, order []string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for key, value := range values {
			encoded.Set(key, value)
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values, order)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

var helpTags = regexp.MustCompile(`<[^>]*>`)

func displayHelp(field model.Field) string {
	help := field.UIHints[model.HintHelp]
	if help == "" {
		help = field.Description
	}
	return strings.TrimSpace(helpTags.ReplaceAllString(help, ""))
}

func stringifyEnum(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// prettyPrint writes values in answer order; keys added by a submit
// transformer follow, sorted.
func prettyPrint(values map[string]string, order []string) string {
	var b strings.Builder
	written := make(map[string]struct{}, len(values))
	for _, key := range order {
		value, ok := values[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", key, value)
		written[key] = struct{}{}
	}
	rest := make([]string, 0, len(values))
	for key := range values {
		if _, ok := written[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(&b, "%s=%s\n", key, values[key])
	}
	return b.String()
}

type validationRules struct {
	required bool
	min      *float64
	max      *float64
	pattern  *regexp.Regexp
}

func collectValidationRules(field model.Field) validationRules {
	rules := validationRules{required: field.Required}
	for _, v := range field.Validations {
		switch v.Kind {
		case model.ValidationRuleMin:
			if val, err := strconv.ParseFloat(v.Params["value"], 64); err == nil {
				rules.min = &val
			}
		case model.ValidationRuleMax:
			if val, err := strconv.ParseFloat(v.Params["value"], 64); err == nil {
				rules.max = &val
			}
		case model.ValidationRulePattern:
			if expr := v.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					rules.pattern = re
				}
			}
		}
	}
	return rules
}

func (r validationRules) validateString(value string) error {
	if strings.TrimSpace(value) == "" {
		if r.required {
			return errors.New("required")
		}
		return nil
	}
	if r.pattern != nil && !r.pattern.MatchString(strings.TrimSpace(value)) {
		return errors.New("does not match required pattern")
	}
	return nil
}

func (r validationRules) validateNumber(raw string, integer bool) error {
	raw = strings.TrimSpace(raw)
	var v float64
	if integer {
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		v = float64(i)
	} else {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		v = f
	}
	if r.min != nil && v < *r.min {
		return fmt.Errorf("min %v", *r.min)
	}
	if r.max != nil && v > *r.max {
		return fmt.Errorf("max %v", *r.max)
	}
	return nil
}

package vanilla

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/render"
)

const (
	controlSelect = "select"
	controlInput  = "input"

	stylesheetAssetKey = "stylesheet"
	defaultSubmitLabel = "Submit"
)

type pageView struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	FormID      string   `json:"form_id"`
	Action      string   `json:"action"`
	Method      string   `json:"method"`
	Enctype     string   `json:"enctype"`
	SubmitLabel string   `json:"submit_label"`
	Fields      []string `json:"fields"`
	FormErrors  []string `json:"form_errors,omitempty"`
	OutcomeHTML string   `json:"outcome_html,omitempty"`
	Stylesheets []string `json:"stylesheets,omitempty"`
	InlineCSS   string   `json:"inline_css,omitempty"`
	ThemeCSS    string   `json:"theme_css,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Variant     string   `json:"variant,omitempty"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type fieldView struct {
	Name        string       `json:"name"`
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Control     string       `json:"control"`
	InputType   string       `json:"input_type"`
	Value       string       `json:"value,omitempty"`
	Required    bool         `json:"required"`
	Placeholder string       `json:"placeholder,omitempty"`
	Step        string       `json:"step,omitempty"`
	Min         string       `json:"min,omitempty"`
	Max         string       `json:"max,omitempty"`
	Pattern     string       `json:"pattern,omitempty"`
	List        string       `json:"list,omitempty"`
	Options     []optionView `json:"options,omitempty"`
	Help        string       `json:"help,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
}

func (r *Renderer) pageView(form model.FormModel, options render.RenderOptions, fields []string) pageView {
	page := pageView{
		Title:       firstNonEmpty(form.Summary, model.DefaultLabeler(form.OperationID)),
		Description: form.Description,
		FormID:      controlID(form.OperationID),
		Action:      form.Endpoint,
		Method:      formMethod(form.Method),
		Enctype:     formEnctype(form.ContentType),
		SubmitLabel: firstNonEmpty(form.Metadata[model.HintSubmitLabel], defaultSubmitLabel),
		Fields:      fields,
		FormErrors:  render.MergeFormErrors(options.FormErrors),
		Stylesheets: append([]string(nil), r.stylesheets...),
	}
	if r.inlineStyles {
		page.InlineCSS = defaultStylesheet()
	}

	if cfg := options.Theme; cfg != nil {
		page.Theme = cfg.Theme
		page.Variant = cfg.Variant
		page.ThemeCSS = cssVariables(cfg.CSSVars)
		if cfg.AssetURL != nil {
			if href := cfg.AssetURL(stylesheetAssetKey); href != "" {
				page.Stylesheets = append(page.Stylesheets, href)
			}
		}
	}
	return page
}

func (r *Renderer) fieldView(field model.Field, options render.RenderOptions) fieldView {
	view := fieldView{
		Name:        field.Name,
		ID:          controlID(field.Name),
		Label:       firstNonEmpty(field.Label, field.Name),
		Required:    field.Required,
		Placeholder: field.Placeholder,
		Step:        field.UIHints[model.HintStep],
		Pattern:     rule(field, model.ValidationRulePattern, "pattern"),
		Min:         rule(field, model.ValidationRuleMin, "value"),
		Max:         rule(field, model.ValidationRuleMax, "value"),
		Errors:      render.MergeFormErrors(options.Errors[field.Name]),
	}
	if value, ok := options.Values[field.Name]; ok && value != nil {
		view.Value = fmt.Sprint(value)
	} else if field.Default != nil {
		view.Value = fmt.Sprint(field.Default)
	}
	if help := firstNonEmpty(field.UIHints[model.HintHelp], field.Description); help != "" {
		view.Help = strings.TrimSpace(r.policy.Sanitize(help))
	}

	switch widget := field.Widget(); {
	case widget == model.WidgetSelect && len(field.Enum) > 0:
		view.Control = controlSelect
		view.Options = selectOptions(field.Enum, view.Value)
		return view
	case widget == model.WidgetDatalist && len(field.Enum) > 0:
		view.Control = controlInput
		view.InputType = "text"
		view.List = view.ID + "-options"
		view.Options = optionViews(field.Enum, view.Value)
		return view
	}

	view.Control = controlInput
	view.InputType = inputType(field)
	if view.InputType == "number" && view.Step == "" && field.Type == model.FieldTypeNumber {
		view.Step = "any"
	}
	return view
}

func optionViews(enum []any, selected string) []optionView {
	options := make([]optionView, 0, len(enum))
	for _, item := range enum {
		value := fmt.Sprint(item)
		options = append(options, optionView{
			Value:    value,
			Label:    value,
			Selected: value == selected,
		})
	}
	return options
}

// selectOptions keeps a submitted value that is not one of the choices as an
// extra selected option so the page shows what was actually sent.
func selectOptions(enum []any, selected string) []optionView {
	options := optionViews(enum, selected)
	if selected == "" {
		return options
	}
	for _, option := range options {
		if option.Selected {
			return options
		}
	}
	return append(options, optionView{Value: selected, Label: selected, Selected: true})
}

func inputType(field model.Field) string {
	switch field.Type {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return "number"
	case model.FieldTypeBoolean:
		return "checkbox"
	default:
		return "text"
	}
}

func rule(field model.Field, kind, param string) string {
	if r, ok := field.Rule(kind); ok {
		return r.Params[param]
	}
	return ""
}

// cssVariables renders vars as a :root block, sorted by name. Values are
// dropped when they could close the style element.
func cssVariables(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range names {
		value := vars[name]
		if strings.ContainsAny(name+value, "<>{};") {
			continue
		}
		fmt.Fprintf(&b, " %s: %s;", name, value)
	}
	b.WriteString(" }")
	return b.String()
}

// resolvePartials overlays theme partials on the embedded templates.
func resolvePartials(options render.RenderOptions) map[string]string {
	partials := DefaultPartials()
	if options.Theme == nil {
		return partials
	}
	for key, path := range options.Theme.Partials {
		if _, known := partials[key]; known && strings.TrimSpace(path) != "" {
			partials[key] = path
		}
	}
	return partials
}

func formMethod(method string) string {
	if strings.EqualFold(method, "get") {
		return "get"
	}
	return "post"
}

func formEnctype(contentType string) string {
	if contentType == "multipart/form-data" {
		return contentType
	}
	return "application/x-www-form-urlencoded"
}

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "lp-" + strings.ReplaceAll(trimmed, "_", "-")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

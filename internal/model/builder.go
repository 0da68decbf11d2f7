package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
)

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
		opts.PreferTitles = options.PreferTitles
	}
	return &Builder{opts: opts}
}

// Build transforms an OpenAPI operation into a FormModel. Fields follow the
// order of the request schema's required list; optional properties come after
// it in name order.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		ContentType: op.ContentType,
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    stringHints(op.RequestBody.Extensions),
	}

	fields, err := b.fieldsFromObject(op.RequestBody)
	if err != nil {
		return FormModel{}, err
	}
	form.Fields = fields
	return form, nil
}

func (b *Builder) fieldsFromObject(schema pkgopenapi.Schema) ([]Field, error) {
	if len(schema.Properties) == 0 {
		return nil, nil
	}

	required := make(map[string]struct{}, len(schema.Required))
	names := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; !ok {
			return nil, fmt.Errorf("model builder: required property %q is not declared", name)
		}
		if _, dup := required[name]; dup {
			continue
		}
		required[name] = struct{}{}
		names = append(names, name)
	}

	var optional []string
	for name := range schema.Properties {
		if _, ok := required[name]; !ok {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	names = append(names, optional...)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		_, isRequired := required[name]
		field, err := b.field(name, schema.Properties[name], isRequired)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (b *Builder) field(name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	field := Field{
		Name:        name,
		Type:        mapType(schema.Type),
		Format:      schema.Format,
		Required:    required,
		Label:       b.label(name, schema),
		Description: schema.Description,
		Default:     schema.Default,
		UIHints:     stringHints(schema.Extensions),
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}
	if placeholder := field.UIHints[HintPlaceholder]; placeholder != "" {
		field.Placeholder = placeholder
	}
	applyValidations(&field, schema)

	switch field.Type {
	case FieldTypeObject:
		nested, err := b.fieldsFromObject(schema)
		if err != nil {
			return Field{}, fmt.Errorf("model builder: field %q: %w", name, err)
		}
		field.Nested = nested
	case FieldTypeArray:
		if schema.Items == nil {
			return Field{}, fmt.Errorf("model builder: array field %q missing items", name)
		}
		item, err := b.field(name+"Item", *schema.Items, false)
		if err != nil {
			return Field{}, err
		}
		field.Items = &item
	}
	return field, nil
}

func (b *Builder) label(name string, schema pkgopenapi.Schema) string {
	if b.opts.PreferTitles && schema.Title != "" {
		return schema.Title
	}
	return b.opts.Labeler(name)
}

func mapType(schemaType string) FieldType {
	switch schemaType {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "object":
		return FieldTypeObject
	default:
		return FieldTypeString
	}
}

func applyValidations(field *Field, schema pkgopenapi.Schema) {
	if schema.Minimum != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMin,
			Params: map[string]string{"value": formatFloat(*schema.Minimum)},
		})
	}
	if schema.Maximum != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMax,
			Params: map[string]string{"value": formatFloat(*schema.Maximum)},
		})
	}
	if schema.Pattern != "" {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// stringHints flattens scalar extension values to strings; nested values are
// dropped.
func stringHints(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}
	out := make(map[string]string, len(ext))
	for key, value := range ext {
		switch v := value.(type) {
		case string:
			out[key] = v
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = formatFloat(v)
		case int:
			out[key] = strconv.Itoa(v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package parser

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
)

// extensionNamespace is the vendor extension carrying form hints such as the
// widget, placeholder or help text.
const extensionNamespace = "x-form"

func convertSchema(ref *openapi3.SchemaRef) pkgopenapi.Schema {
	return convertSchemaRef(ref, make(map[*openapi3.Schema]bool))
}

// convertSchemaRef walks ref. visiting guards against recursive component
// references; a cycle keeps only the $ref.
func convertSchemaRef(ref *openapi3.SchemaRef, visiting map[*openapi3.Schema]bool) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	if ref.Value == nil || visiting[ref.Value] {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	visiting[ref.Value] = true
	defer delete(visiting, ref.Value)

	src := ref.Value
	schema := pkgopenapi.Schema{
		Ref:         ref.Ref,
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
		Pattern:     src.Pattern,
	}

	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgopenapi.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchemaRef(property, visiting)
		}
	}
	if src.Items != nil {
		items := convertSchemaRef(src.Items, visiting)
		schema.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		schema.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		schema.Maximum = &value
	}
	schema.Extensions = extractExtensions(src.Extensions)

	for _, part := range src.AllOf {
		mergeAllOf(&schema, convertSchemaRef(part, visiting))
	}
	return schema
}

// mergeAllOf folds an allOf member into target. Properties and required names
// accumulate; scalar attributes only fill gaps.
func mergeAllOf(target *pkgopenapi.Schema, part pkgopenapi.Schema) {
	if target.Type == "" {
		target.Type = part.Type
	}
	if target.Title == "" {
		target.Title = part.Title
	}
	if target.Description == "" {
		target.Description = part.Description
	}
	if len(part.Properties) > 0 {
		if target.Properties == nil {
			target.Properties = make(map[string]pkgopenapi.Schema, len(part.Properties))
		}
		for name, property := range part.Properties {
			if _, exists := target.Properties[name]; !exists {
				target.Properties[name] = property
			}
		}
	}
	for _, name := range part.Required {
		if !contains(target.Required, name) {
			target.Required = append(target.Required, name)
		}
	}
	target.Extensions = mergeExtensions(part.Extensions, target.Extensions)
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}

// extractExtensions keeps the x-form namespace and any x-form-* keys.
func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	result := make(map[string]any)
	for key, value := range raw {
		switch {
		case key == extensionNamespace:
			if mapped, ok := value.(map[string]any); ok {
				for k, v := range mapped {
					result[k] = v
				}
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			result[strings.TrimPrefix(key, extensionNamespace+"-")] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// mergeExtensions returns base overlaid with overrides.
func mergeExtensions(base, overrides map[string]any) map[string]any {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

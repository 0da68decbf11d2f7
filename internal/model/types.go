package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin     = "min"
	ValidationRuleMax     = "max"
	ValidationRulePattern = "pattern"
)

// UI hint keys read from the x-form schema extension.
const (
	HintWidget      = "widget"
	HintPlaceholder = "placeholder"
	HintStep        = "step"
	HintHelp        = "help"
	HintSubmitLabel = "submitLabel"
)

const (
	// WidgetSelect renders the field as a drop-down over its Enum.
	WidgetSelect = "select"
	// WidgetDatalist renders a free text input that suggests its Enum.
	WidgetDatalist = "datalist"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds encode their threshold in Params["value"] while pattern rules
// keep the expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models an individual input inside a generated form.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Widget returns the widget hint, defaulting to select when the field has an
// enum.
func (f Field) Widget() string {
	if widget := f.UIHints[HintWidget]; widget != "" {
		return widget
	}
	if len(f.Enum) > 0 {
		return WidgetSelect
	}
	return ""
}

// Rule returns the first validation rule of kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	ContentType string            `json:"contentType,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field returns the top-level field named name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

package model

// ApplyChoices replaces the Enum of every top-level field named in choices
// and renders it as a select. Fields with an empty list are left untouched.
func ApplyChoices(form *FormModel, choices map[string][]string) {
	if form == nil {
		return
	}
	for i := range form.Fields {
		field := &form.Fields[i]
		values := choices[field.Name]
		if len(values) == 0 {
			continue
		}
		field.Enum = make([]any, len(values))
		for j, value := range values {
			field.Enum[j] = value
		}
		if field.UIHints == nil {
			field.UIHints = make(map[string]string, 1)
		}
		if field.UIHints[HintWidget] == "" {
			field.UIHints[HintWidget] = WidgetSelect
		}
	}
}

package model

import internal "github.com/goliatone/go-laptopprice/internal/model"

type (
	FieldType      = internal.FieldType
	ValidationRule = internal.ValidationRule
	Field          = internal.Field
	FormModel      = internal.FormModel
)

const (
	FieldTypeString  = internal.FieldTypeString
	FieldTypeInteger = internal.FieldTypeInteger
	FieldTypeNumber  = internal.FieldTypeNumber
	FieldTypeBoolean = internal.FieldTypeBoolean
	FieldTypeArray   = internal.FieldTypeArray
	FieldTypeObject  = internal.FieldTypeObject

	ValidationRuleMin     = internal.ValidationRuleMin
	ValidationRuleMax     = internal.ValidationRuleMax
	ValidationRulePattern = internal.ValidationRulePattern

	HintWidget      = internal.HintWidget
	HintPlaceholder = internal.HintPlaceholder
	HintStep        = internal.HintStep
	HintHelp        = internal.HintHelp
	HintSubmitLabel = internal.HintSubmitLabel

	WidgetSelect   = internal.WidgetSelect
	WidgetDatalist = internal.WidgetDatalist
)

// DefaultLabeler converts a field name into a human-friendly label.
func DefaultLabeler(name string) string {
	return internal.DefaultLabeler(name)
}

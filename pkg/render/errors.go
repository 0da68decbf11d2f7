package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/model"
)

// ErrorMapping splits failures into field-level and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapFieldErrors attaches err to the form control it names. Errors carrying a
// field (feature.FieldError) that the form declares become field errors; any
// other error, such as a prediction failure, is form-level.
func MapFieldErrors(form model.FormModel, err error) ErrorMapping {
	var mapping ErrorMapping
	if err == nil {
		return mapping
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		return mapping
	}

	var fieldErr feature.FieldError
	if errors.As(err, &fieldErr) {
		if _, ok := form.Field(fieldErr.FieldName()); ok {
			mapping.Fields = map[string][]string{fieldErr.FieldName(): {message}}
			return mapping
		}
	}
	mapping.Form = []string{message}
	return mapping
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

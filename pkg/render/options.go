package render

import (
	"strconv"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-laptopprice/pkg/inference"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Values pre-populates rendered controls, keyed by field name.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field name.
	Errors map[string][]string
	// FormErrors holds messages that belong to no single field.
	FormErrors []string
	// Outcome is the prediction result shown next to the form, if any.
	Outcome *Outcome
	// Theme carries the resolved theme selection.
	Theme *theme.RendererConfig
}

// Outcome is the presentation view of an inference.Result.
type Outcome struct {
	OK      bool   `json:"ok"`
	Price   int64  `json:"price"`
	Message string `json:"message"`
}

// OutcomeFrom converts result into an Outcome.
func OutcomeFrom(result inference.Result) *Outcome {
	if price, ok := result.Price(); ok {
		return &Outcome{OK: true, Price: price, Message: strconv.FormatInt(price, 10)}
	}
	return &Outcome{Message: result.Message()}
}

// ValuesFrom copies string inputs into a Values map.
func ValuesFrom(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	values := make(map[string]any, len(raw))
	for key, value := range raw {
		values[key] = value
	}
	return values
}

// Package pipeline provides the inference.Pipeline implementations the
// service can load: a local linear model over one-hot encoded categories and
// an HTTP client for a remote inference service.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
)

const (
	KindLinear = "linear"
	KindRemote = "remote"
)

// LinearSpec is the serialised form of a Linear pipeline.
type LinearSpec struct {
	Kind        string                        `yaml:"kind" json:"kind"`
	Target      string                        `yaml:"target,omitempty" json:"target,omitempty"`
	Columns     []string                      `yaml:"columns" json:"columns"`
	Intercept   float64                       `yaml:"intercept" json:"intercept"`
	Numeric     map[string]float64            `yaml:"numeric" json:"numeric"`
	Categorical map[string]map[string]float64 `yaml:"categorical" json:"categorical"`
}

// Linear scores a vector as intercept + sum(weight * numeric) + the weight of
// each categorical level. It is immutable once built.
type Linear struct {
	intercept   float64
	numeric     map[string]float64
	categorical map[string]map[string]float64
	numericCols []string
	categCols   []string
}

var _ inference.Pipeline = (*Linear)(nil)

// NewLinear validates spec against the feature column layout and returns the
// model.
func NewLinear(spec LinearSpec) (*Linear, error) {
	if spec.Kind != "" && spec.Kind != KindLinear {
		return nil, fmt.Errorf("pipeline: linear: unexpected kind %q", spec.Kind)
	}
	if !slices.Equal(spec.Columns, feature.Columns()) {
		return nil, fmt.Errorf("pipeline: linear: columns %q do not match feature layout %q", spec.Columns, feature.Columns())
	}

	model := &Linear{
		intercept:   spec.Intercept,
		numeric:     make(map[string]float64, len(spec.Numeric)),
		categorical: make(map[string]map[string]float64, len(spec.Categorical)),
	}

	for _, column := range spec.Columns {
		if feature.IsCategorical(column) {
			model.categCols = append(model.categCols, column)
		} else {
			model.numericCols = append(model.numericCols, column)
		}
	}

	for column, weight := range spec.Numeric {
		if !slices.Contains(model.numericCols, column) {
			return nil, fmt.Errorf("pipeline: linear: %q is not a numeric column", column)
		}
		model.numeric[column] = weight
	}

	for column, levels := range spec.Categorical {
		if !slices.Contains(model.categCols, column) {
			return nil, fmt.Errorf("pipeline: linear: %q is not a categorical column", column)
		}
		copied := make(map[string]float64, len(levels))
		for level, weight := range levels {
			copied[level] = weight
		}
		model.categorical[column] = copied
	}
	for _, column := range model.categCols {
		if len(model.categorical[column]) == 0 {
			return nil, fmt.Errorf("pipeline: linear: categorical column %q has no levels", column)
		}
	}

	return model, nil
}

// Predict returns the log price for vector. A categorical value the model has
// never seen fails the prediction.
func (m *Linear) Predict(ctx context.Context, vector feature.Vector) (float64, error) {
	if m == nil {
		return 0, errors.New("pipeline: linear model is nil")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	total := m.intercept
	for _, column := range m.numericCols {
		value, err := vector.Numeric(column)
		if err != nil {
			return 0, err
		}
		total += m.numeric[column] * value
	}
	for _, column := range m.categCols {
		value, err := vector.Categorical(column)
		if err != nil {
			return 0, err
		}
		weight, ok := m.categorical[column][value]
		if !ok {
			return 0, &UnknownCategoryError{Column: column, Value: value}
		}
		total += weight
	}
	return total, nil
}

// Levels returns the sorted categorical levels known for column.
func (m *Linear) Levels(column string) []string {
	levels := make([]string, 0, len(m.categorical[column]))
	for level := range m.categorical[column] {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	return levels
}

// UnknownCategoryError reports a categorical value outside the trained
// vocabulary.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("pipeline: found unknown category %q in column %q during transform", e.Value, e.Column)
}

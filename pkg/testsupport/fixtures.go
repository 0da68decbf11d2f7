// Package testsupport holds fixtures shared by package tests: the embedded
// OpenAPI document, the prediction form built from it, the sample pipeline
// and dataset, and well-known raw inputs.
package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-laptopprice/api"
	"github.com/goliatone/go-laptopprice/internal/openapi/parser"
	"github.com/goliatone/go-laptopprice/pkg/artifact"
	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	pkgmodel "github.com/goliatone/go-laptopprice/pkg/model"
	pkgopenapi "github.com/goliatone/go-laptopprice/pkg/openapi"
	"github.com/goliatone/go-laptopprice/pkg/pipeline"
	"github.com/goliatone/go-laptopprice/samples"
)

// LoadDocument reads a fixture and builds an openapi.Document using a file
// source.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (pkgopenapi.Document, error) {
	if path == "" {
		return pkgopenapi.Document{}, errors.New("testsupport: document path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := pkgopenapi.NewDocument(artifact.SourceFromFile(path), data)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// APIDocument wraps the embedded OpenAPI document.
func APIDocument() pkgopenapi.Document {
	return pkgopenapi.MustNewDocument(artifact.SourceFromFS(api.DocumentPath), api.Document())
}

// PredictionOperation parses the embedded document and returns the
// prediction operation.
func PredictionOperation(t *testing.T) pkgopenapi.Operation {
	t.Helper()

	operations, err := parser.New(pkgopenapi.NewParserOptions()).Operations(Context(), APIDocument())
	if err != nil {
		t.Fatalf("parse api document: %v", err)
	}
	op, ok := operations[api.PredictOperation]
	if !ok {
		t.Fatalf("operation %q missing", api.PredictOperation)
	}
	return op
}

// PredictionForm builds the prediction form with the sample dataset's
// choice lists applied.
func PredictionForm(t *testing.T) pkgmodel.FormModel {
	t.Helper()

	form, err := pkgmodel.NewBuilder().Build(PredictionOperation(t))
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	pkgmodel.ApplyChoices(&form, dataset.ChoicesFrom(SampleDataset(t)))
	return form
}

// SampleDataset parses the embedded reference dataset.
func SampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds, err := dataset.ParseNamed(samples.DatasetPath, samples.Dataset())
	if err != nil {
		t.Fatalf("parse sample dataset: %v", err)
	}
	return ds
}

// SamplePipeline decodes the embedded linear pipeline.
func SamplePipeline(t *testing.T) inference.Pipeline {
	t.Helper()

	p, err := pipeline.Decode(samples.Pipeline())
	if err != nil {
		t.Fatalf("decode sample pipeline: %v", err)
	}
	return p
}

// ConstantPipeline returns a pipeline that always predicts logPrice.
func ConstantPipeline(logPrice float64) inference.Pipeline {
	return inference.PipelineFunc(func(context.Context, feature.Vector) (float64, error) {
		return logPrice, nil
	})
}

// DellInputs is a complete, valid submission for a 15.6" 1920x1080 Dell
// notebook (ppi ~ 141.21).
func DellInputs() feature.RawInputs {
	return feature.RawInputs{
		feature.FieldCompany:     "Dell",
		feature.FieldType:        "Notebook",
		feature.FieldRAM:         "8",
		feature.FieldWeight:      "2.1",
		feature.FieldTouchscreen: "No",
		feature.FieldIPS:         "Yes",
		feature.FieldScreenSize:  "15.6",
		feature.FieldResolution:  "1920x1080",
		feature.FieldCPU:         "Intel Core i5",
		feature.FieldHDD:         "0",
		feature.FieldSSD:         "256",
		feature.FieldGPU:         "Intel",
		feature.FieldOS:          "Windows",
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

package laptopprice_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	laptopprice "github.com/goliatone/go-laptopprice"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/renderers/vanilla"
	"github.com/goliatone/go-laptopprice/pkg/testsupport"
)

func TestPredict(t *testing.T) {
	result := laptopprice.Predict(context.Background(), testsupport.SamplePipeline(t), testsupport.DellInputs())

	price, ok := result.Price()
	if !ok {
		t.Fatalf("predict: %v", result.Err())
	}
	if price != 60185 {
		t.Fatalf("expected 60185, got %d", price)
	}
}

func TestPredict_Validation(t *testing.T) {
	raw := testsupport.DellInputs()
	delete(raw, feature.FieldOS)

	result := laptopprice.Predict(context.Background(), testsupport.SamplePipeline(t), raw)
	if result.OK() || !feature.IsValidationError(result.Err()) {
		t.Fatalf("expected validation failure, got %+v", result)
	}
}

func TestRenderHTML(t *testing.T) {
	pipeline := testsupport.SamplePipeline(t)
	result := laptopprice.Predict(context.Background(), pipeline, testsupport.DellInputs())

	output, err := laptopprice.RenderHTML(context.Background(), testsupport.DellInputs(), &result,
		orchestrator.WithPipeline(pipeline),
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(output), `data-price="60185"`) {
		t.Fatalf("expected price in output:\n%s", output)
	}
}

func TestEmbeddedFiles(t *testing.T) {
	if _, err := fs.Stat(laptopprice.EmbeddedTemplates(), vanilla.PageTemplate); err != nil {
		t.Fatalf("page template: %v", err)
	}
	if _, err := fs.Stat(laptopprice.EmbeddedAssets(), vanilla.StylesheetName); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
}

func TestNewParser_EmbeddedDocument(t *testing.T) {
	operations, err := laptopprice.NewParser().Operations(context.Background(), testsupport.APIDocument())
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if _, ok := operations["predictPrice"]; !ok {
		t.Fatalf("predictPrice operation missing: %v", operations)
	}
}

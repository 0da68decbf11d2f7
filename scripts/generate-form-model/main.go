package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/render"
	"github.com/goliatone/go-laptopprice/samples"
)

const snapshotRendererName = "form-model-snapshot"

type snapshotRenderer struct {
	path string
}

func (r *snapshotRenderer) Name() string {
	return snapshotRendererName
}

func (r *snapshotRenderer) ContentType() string {
	return "application/json"
}

func (r *snapshotRenderer) Render(_ context.Context, form model.FormModel, _ render.RenderOptions) ([]byte, error) {
	payload, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(r.path, append(payload, '\n'), 0o644); err != nil {
		return nil, err
	}
	return payload, nil
}

func main() {
	outputPath := flag.String("output", "form_model.json", "output path for the serialized form model")
	flag.Parse()

	ds, err := dataset.ParseNamed(samples.DatasetPath, samples.Dataset())
	if err != nil {
		log.Fatalf("dataset: %v", err)
	}

	orch := orchestrator.New(orchestrator.WithChoices(dataset.ChoicesFrom(ds)))
	orch.Registry().MustRegister(&snapshotRenderer{path: *outputPath})

	if _, err := orch.Render(context.Background(), orchestrator.Request{Renderer: snapshotRendererName}); err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	fmt.Printf("Form model written to %s\n", *outputPath)
}

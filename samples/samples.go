// Package samples embeds a small reference dataset and a linear pipeline
// trained on it. The server falls back to them when no artifact locations
// are configured, and tests use them as fixtures.
package samples

import "embed"

const (
	PipelinePath = "pipeline.yaml"
	DatasetPath  = "laptops.csv"
)

//go:embed pipeline.yaml laptops.csv
var FS embed.FS

// Pipeline returns the raw pipeline artifact.
func Pipeline() []byte {
	return mustRead(PipelinePath)
}

// Dataset returns the raw reference dataset.
func Dataset() []byte {
	return mustRead(DatasetPath)
}

func mustRead(name string) []byte {
	data, err := FS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

// Package api embeds the OpenAPI document describing the prediction form and
// its JSON endpoint.
package api

import "embed"

const (
	// DocumentPath is the document's name inside FS.
	DocumentPath = "openapi.yaml"
	// PredictOperation is the operationId of the prediction form.
	PredictOperation = "predictPrice"
)

//go:embed openapi.yaml
var FS embed.FS

// Document returns the raw OpenAPI document.
func Document() []byte {
	data, err := FS.ReadFile(DocumentPath)
	if err != nil {
		panic(err)
	}
	return data
}

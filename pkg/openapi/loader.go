package openapi

import (
	"context"

	"github.com/goliatone/go-laptopprice/pkg/artifact"
)

// Loader fetches OpenAPI documents from any artifact source. Implementations
// live under internal/openapi but satisfy this contract.
type Loader interface {
	Load(ctx context.Context, src artifact.Source) (Document, error)
}

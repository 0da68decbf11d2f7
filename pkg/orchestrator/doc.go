// Package orchestrator wires the service together: it turns the embedded
// OpenAPI document into the prediction form (loader, parser, model builder,
// transformers, decorators), renders it through the renderer registry with the
// resolved theme, and runs predictions through the feature builder and the
// inference invoker.
package orchestrator

// Package openapi exposes the contracts for the loader and parser stages that
// turn the service's OpenAPI document into operations. Implementations live
// under internal/openapi to keep kin-openapi out of the public API.
package openapi

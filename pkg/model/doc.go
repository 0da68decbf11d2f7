// Package model defines the typed form model consumed by renderers. Builders
// reside in internal/model but return the types defined here. Fields follow
// the order of the request schema's required list, and the x-form schema
// extension surfaces as UIHints (widget, placeholder, step, help).
package model

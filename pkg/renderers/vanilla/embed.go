package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the embedded stylesheet's name inside AssetsFS.
const StylesheetName = "laptopprice.css"

// Template names inside TemplatesFS. Themes can replace each one through
// theme partials keyed by the matching Partial* constant.
const (
	PageTemplate    = "templates/page.tmpl"
	FieldTemplate   = "templates/field.tmpl"
	OutcomeTemplate = "templates/outcome.tmpl"

	PartialPage    = "forms.page"
	PartialField   = "forms.field"
	PartialOutcome = "forms.outcome"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so callers can serve it over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}

// DefaultPartials maps every partial key to its embedded template.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialPage:    PageTemplate,
		PartialField:   FieldTemplate,
		PartialOutcome: OutcomeTemplate,
	}
}

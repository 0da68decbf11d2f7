package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-laptopprice/pkg/renderers/vanilla"
)

// ThemeSelector resolves a theme name and variant into a selection. The
// go-theme selectors satisfy it, as does StaticSelector.
type ThemeSelector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

// StaticSelector serves a fixed set of manifests without a registry. An
// unknown name falls back to the first manifest registered.
type StaticSelector struct {
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector indexes manifests by name.
func NewStaticSelector(manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		if s.fallback == "" {
			s.fallback = manifest.Name
		}
		s.manifests[manifest.Name] = manifest
	}
	return s
}

// Select returns the manifest for name. A variant the manifest does not
// declare is kept only when the manifest has no variants at all.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	manifest, ok := s.manifests[name]
	if !ok {
		manifest, ok = s.manifests[s.fallback]
	}
	if !ok {
		return nil, fmt.Errorf("orchestrator: theme %q not found", name)
	}
	if len(manifest.Variants) > 0 {
		if _, known := manifest.Variants[variant]; !known {
			variant = ""
		}
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

// DefaultManifest is the built-in theme: the stylesheet's palette as tokens
// with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "default",
		Version: "1.0.0",
		Tokens: map[string]string{
			"lp-brand":   "#2563eb",
			"lp-surface": "#ffffff",
			"lp-text":    "#111827",
			"lp-muted":   "#6b7280",
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"lp-brand":   "#60a5fa",
					"lp-surface": "#1f2937",
					"lp-text":    "#f3f4f6",
					"lp-muted":   "#9ca3af",
				},
			},
		},
	}
}

func defaultThemeFallbacks() map[string]string {
	return vanilla.DefaultPartials()
}

// rendererConfig flattens a selection into the values renderers consume.
// Variant tokens, templates and assets override the manifest's.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStringMap(nil, fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}

	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}
	variant, hasVariant := manifest.Variants[selection.Variant]

	cfg.Partials = mergeStringMap(cfg.Partials, manifest.Templates)
	cfg.Tokens = mergeStringMap(cfg.Tokens, manifest.Tokens)
	if hasVariant {
		cfg.Partials = mergeStringMap(cfg.Partials, variant.Templates)
		cfg.Tokens = mergeStringMap(cfg.Tokens, variant.Tokens)
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := manifest.Assets.Prefix
	files := mergeStringMap(nil, manifest.Assets.Files)
	if hasVariant {
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
		files = mergeStringMap(files, variant.Assets.Files)
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

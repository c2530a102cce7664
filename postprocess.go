package web2pdf

import (
	"fmt"

	"github.com/alnah/go-web2pdf/internal/assets"
)

// PostProcessor is an in-page mutation run after readiness and before print.
// Script is a function expression; Args is passed as its only argument.
// Failures are cosmetic and degrade the render, never abort it.
type PostProcessor interface {
	Name() string
	Script() string
	Args() any
}

// ScriptLoader resolves named in-page scripts.
// Implement it to serve scripts from another source than the built-in set.
type ScriptLoader interface {
	LoadScript(name string) (string, error)
}

// Compile-time interface checks.
var (
	_ PostProcessor = (*HeaderStrip)(nil)
	_ PostProcessor = (*ScriptHook)(nil)
	_ ScriptLoader  = (*assets.AssetResolver)(nil)
)

// HeaderStrip defaults.
const (
	DefaultHeaderSelector = "header"
	DefaultRootSelector   = "#root, #app, main"
	DefaultTopPadding     = "16px"
)

// HeaderStrip removes a site header before printing, flattens the top
// spacing of the root containers, forces a white background and applies a
// fixed top padding. Missing elements are skipped.
type HeaderStrip struct {
	HeaderSelector string
	RootSelector   string
	TopPadding     string

	script string
}

// NewHeaderStrip returns a HeaderStrip using the strip_header script from
// loader. Empty fields take the package defaults.
func NewHeaderStrip(loader ScriptLoader, h HeaderStrip) (*HeaderStrip, error) {
	script, err := loader.LoadScript(assets.ScriptStripHeader)
	if err != nil {
		return nil, fmt.Errorf("loading %s script: %w", assets.ScriptStripHeader, err)
	}
	if h.HeaderSelector == "" {
		h.HeaderSelector = DefaultHeaderSelector
	}
	if h.RootSelector == "" {
		h.RootSelector = DefaultRootSelector
	}
	if h.TopPadding == "" {
		h.TopPadding = DefaultTopPadding
	}
	h.script = script
	return &h, nil
}

// Name returns "strip_header".
func (h *HeaderStrip) Name() string { return assets.ScriptStripHeader }

// Script returns the loaded strip_header function.
func (h *HeaderStrip) Script() string { return h.script }

// Args returns the selectors and padding passed to the script.
func (h *HeaderStrip) Args() any {
	return map[string]string{
		"headerSelector": h.HeaderSelector,
		"rootSelector":   h.RootSelector,
		"topPadding":     h.TopPadding,
	}
}

// ScriptHook runs a named script from a ScriptLoader, typically a custom
// scripts directory, with fixed arguments.
type ScriptHook struct {
	name   string
	script string
	args   map[string]any
}

// NewScriptHook loads name from loader.
func NewScriptHook(loader ScriptLoader, name string, args map[string]any) (*ScriptHook, error) {
	script, err := loader.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("loading hook %q: %w", name, err)
	}
	return &ScriptHook{name: name, script: script, args: args}, nil
}

func (h *ScriptHook) Name() string   { return h.name }
func (h *ScriptHook) Script() string { return h.script }

// Args returns the configured arguments, or an empty object.
func (h *ScriptHook) Args() any {
	if h.args == nil {
		return map[string]any{}
	}
	return h.args
}

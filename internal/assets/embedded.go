package assets

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed scripts/*
var scripts embed.FS

// EmbeddedLoader loads scripts from the embedded filesystem.
// Implements ScriptLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadScript loads a script from embedded assets by name.
// The name should not include the .js extension.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := scripts.ReadFile("scripts/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrScriptNotFound, name)
	}

	return strings.TrimSpace(string(content)), nil
}

// Compile-time interface check.
var _ ScriptLoader = (*EmbeddedLoader)(nil)

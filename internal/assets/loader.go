package assets

// ScriptLoader defines the contract for loading in-page scripts.
// Implementations may load from embedded assets, filesystem, etc.
type ScriptLoader interface {
	// LoadScript loads a JavaScript function by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadScript(name string) (string, error)
}

// Built-in script names. Every script is a single function expression that
// takes at most one argument.
const (
	// ScriptReadiness returns true once the body exists and no longer shows
	// opts.marker.
	ScriptReadiness = "readiness"

	// ScriptSeedStorage writes opts.items into localStorage and returns the
	// number of keys stored.
	ScriptSeedStorage = "seed_storage"

	// ScriptStripHeader removes opts.headerSelector, flattens the top spacing
	// of opts.rootSelector and applies opts.topPadding.
	ScriptStripHeader = "strip_header"

	// ScriptPageHeight returns the document scroll height in CSS pixels.
	ScriptPageHeight = "page_height"
)

package assets

import "fmt"

// MaxScriptNameLen bounds script names accepted from configuration.
const MaxScriptNameLen = 100

// ValidateAssetName reports ErrInvalidAssetName unless name is a bare script
// name: ASCII letters, digits, '-' or '_', at most MaxScriptNameLen long.
// Names never carry an extension; loaders append ".js".
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxScriptNameLen {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, MaxScriptNameLen)
	}
	for _, c := range name {
		if !isScriptNameRune(c) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidAssetName, name, c)
		}
	}
	return nil
}

func isScriptNameRune(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return c == '-' || c == '_'
}

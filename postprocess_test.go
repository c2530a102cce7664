package web2pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-web2pdf/internal/assets"
)

// mapLoader serves scripts from memory.
type mapLoader map[string]string

func (m mapLoader) LoadScript(name string) (string, error) {
	s, ok := m[name]
	if !ok {
		return "", assets.ErrScriptNotFound
	}
	return s, nil
}

func TestNewHeaderStrip(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		h, err := NewHeaderStrip(assets.NewEmbeddedLoader(), HeaderStrip{})
		if err != nil {
			t.Fatalf("NewHeaderStrip() error = %v", err)
		}
		if h.Name() != "strip_header" {
			t.Errorf("Name() = %q", h.Name())
		}
		if !strings.HasPrefix(h.Script(), "(opts) =>") {
			t.Errorf("Script() should be a function expression, got %q", h.Script()[:20])
		}

		args, ok := h.Args().(map[string]string)
		if !ok {
			t.Fatalf("Args() type = %T", h.Args())
		}
		if args["headerSelector"] != DefaultHeaderSelector ||
			args["rootSelector"] != DefaultRootSelector ||
			args["topPadding"] != DefaultTopPadding {
			t.Errorf("Args() = %v, want defaults", args)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		h, err := NewHeaderStrip(assets.NewEmbeddedLoader(), HeaderStrip{HeaderSelector: "nav.top", TopPadding: "0"})
		if err != nil {
			t.Fatalf("NewHeaderStrip() error = %v", err)
		}
		args := h.Args().(map[string]string)
		if args["headerSelector"] != "nav.top" || args["topPadding"] != "0" {
			t.Errorf("Args() = %v", args)
		}
		if args["rootSelector"] != DefaultRootSelector {
			t.Errorf("rootSelector = %q, want default", args["rootSelector"])
		}
	})

	t.Run("missing script", func(t *testing.T) {
		t.Parallel()

		_, err := NewHeaderStrip(mapLoader{}, HeaderStrip{})
		if !errors.Is(err, assets.ErrScriptNotFound) {
			t.Errorf("NewHeaderStrip() error = %v, want ErrScriptNotFound", err)
		}
	})
}

func TestNewScriptHook(t *testing.T) {
	t.Parallel()

	t.Run("from custom directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
			t.Fatal(err)
		}
		src := "(opts) => document.querySelectorAll(opts.selector).forEach(e => e.remove())"
		if err := os.WriteFile(filepath.Join(dir, "scripts", "hide_banner.js"), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		resolver, err := assets.NewAssetResolver(dir)
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}

		h, err := NewScriptHook(resolver, "hide_banner", map[string]any{"selector": ".cookie"})
		if err != nil {
			t.Fatalf("NewScriptHook() error = %v", err)
		}
		if h.Name() != "hide_banner" || h.Script() != src {
			t.Errorf("hook = %q %q", h.Name(), h.Script())
		}
		if args := h.Args().(map[string]any); args["selector"] != ".cookie" {
			t.Errorf("Args() = %v", args)
		}
	})

	t.Run("nil args become empty object", func(t *testing.T) {
		t.Parallel()

		h, err := NewScriptHook(mapLoader{"noop": "() => 0"}, "noop", nil)
		if err != nil {
			t.Fatalf("NewScriptHook() error = %v", err)
		}
		args, ok := h.Args().(map[string]any)
		if !ok || args == nil || len(args) != 0 {
			t.Errorf("Args() = %#v, want empty map", h.Args())
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		t.Parallel()

		_, err := NewScriptHook(mapLoader{}, "missing", nil)
		if !errors.Is(err, assets.ErrScriptNotFound) {
			t.Errorf("NewScriptHook() error = %v, want ErrScriptNotFound", err)
		}
	})
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/assets"
	"github.com/alnah/go-web2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestBuildHooks - header strip first, then scripts in order
// ---------------------------------------------------------------------------

func TestBuildHooks(t *testing.T) {
	t.Parallel()

	scripts, err := assets.NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver: %v", err)
	}

	t.Run("none configured", func(t *testing.T) {
		t.Parallel()

		hooks, err := buildHooks(config.HooksConfig{}, scripts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hooks) != 0 {
			t.Errorf("got %d hooks, want 0", len(hooks))
		}
	})

	t.Run("strip header only", func(t *testing.T) {
		t.Parallel()

		hooks, err := buildHooks(config.HooksConfig{
			StripHeader: config.StripHeaderConfig{Enabled: true, TopPadding: "24px"},
		}, scripts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hooks) != 1 || hooks[0].Name() != "strip_header" {
			t.Errorf("hooks = %v, want [strip_header]", hookNames(hooks))
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		t.Parallel()

		_, err := buildHooks(config.HooksConfig{
			Scripts: []config.ScriptHookConfig{{Name: "does_not_exist"}},
		}, scripts)
		if !errors.Is(err, assets.ErrScriptNotFound) {
			t.Errorf("error = %v, want ErrScriptNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildHooks_CustomScripts - scripts load from the configured directory
// ---------------------------------------------------------------------------

func TestBuildHooks_CustomScripts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "hide_banner.js"), []byte("(args) => {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	scripts, err := assets.NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver: %v", err)
	}

	hooks, err := buildHooks(config.HooksConfig{
		StripHeader: config.StripHeaderConfig{Enabled: true},
		Scripts:     []config.ScriptHookConfig{{Name: "hide_banner", Args: map[string]any{"id": "b"}}},
	}, scripts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hooks) != 2 || hooks[0].Name() != "strip_header" || hooks[1].Name() != "hide_banner" {
		t.Errorf("hooks = %v, want [strip_header hide_banner]", hookNames(hooks))
	}
}

func hookNames(hooks []web2pdf.PostProcessor) []string {
	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.Name()
	}
	return names
}

// ---------------------------------------------------------------------------
// TestBuildRenderer - config flows into the renderer
// ---------------------------------------------------------------------------

func TestBuildRenderer(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(t, &stubEngine{})
		cfg := config.DefaultConfig()
		cfg.Server.MaxConcurrent = 3

		r, err := buildRenderer(cfg, zap.NewNop(), env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Engine().Name() != "stub" {
			t.Errorf("engine = %q, want stub", r.Engine().Name())
		}
		if r.Limiter().Capacity() != 3 {
			t.Errorf("capacity = %d, want 3", r.Limiter().Capacity())
		}
	})

	t.Run("engine factory error", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(t, nil)
		env.NewEngine = web2pdf.NewEngine
		cfg := config.DefaultConfig()
		cfg.Engine.Name = "firefox"

		_, err := buildRenderer(cfg, zap.NewNop(), env)
		if !errors.Is(err, web2pdf.ErrUnknownEngine) {
			t.Errorf("error = %v, want ErrUnknownEngine", err)
		}
	})

	t.Run("missing script dir", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(t, &stubEngine{})
		cfg := config.DefaultConfig()
		cfg.Assets.ScriptDir = filepath.Join(t.TempDir(), "absent")

		_, err := buildRenderer(cfg, zap.NewNop(), env)
		if !errors.Is(err, assets.ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("invalid page", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(t, &stubEngine{})
		cfg := config.DefaultConfig()
		cfg.Page.Orientation = "diagonal"

		_, err := buildRenderer(cfg, zap.NewNop(), env)
		if !errors.Is(err, web2pdf.ErrInvalidOrientation) {
			t.Errorf("error = %v, want ErrInvalidOrientation", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildTimeouts - durations map field by field
// ---------------------------------------------------------------------------

func TestBuildTimeouts(t *testing.T) {
	t.Parallel()

	got := buildTimeouts(config.TimeoutsConfig{
		Launch:     config.Duration(5 * time.Second),
		Navigation: config.Duration(time.Minute),
		Print:      config.Duration(20 * time.Second),
	})
	want := web2pdf.Timeouts{Launch: 5 * time.Second, Navigation: time.Minute, Print: 20 * time.Second}
	if got != want {
		t.Errorf("buildTimeouts = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - injected logger wins
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("injected", func(t *testing.T) {
		t.Parallel()

		injected := zap.NewNop()
		env := &Environment{NewLogger: func() *zap.Logger { return injected }}
		logger, closeFn, err := newLogger(config.DefaultConfig(), env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeFn()
		if logger != injected {
			t.Error("expected the injected logger")
		}
	})

	t.Run("built from config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Log.Format = "json"
		cfg.Log.File = filepath.Join(t.TempDir(), "web2pdf.log")

		logger, closeFn, err := newLogger(cfg, &Environment{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hello")
		closeFn()

		data, err := os.ReadFile(cfg.Log.File)
		if err != nil {
			t.Fatalf("log file: %v", err)
		}
		if len(data) == 0 {
			t.Error("log file is empty")
		}
	})
}

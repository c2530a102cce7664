package hints

// Notes:
// - ForBrowserLaunch tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable

import (
	"strings"
	"testing"
)

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "WEB2PDF_BROWSER_BIN", "ROD_BROWSER_BIN"} {
		t.Setenv(k, "")
	}
}

func TestForBrowserLaunch(t *testing.T) {
	tests := []struct {
		name        string
		engine      string
		container   bool
		env         map[string]string
		contains    []string
		notContains []string
	}{
		{
			name:     "local rod suggests custom chrome",
			engine:   "rod",
			contains: []string{"hint:", "WEB2PDF_BROWSER_BIN to use a custom Chrome"},
		},
		{
			name:     "CI suggests image chromium",
			engine:   "rod",
			env:      map[string]string{"CI": "true"},
			contains: []string{"/usr/bin/chromium"},
		},
		{
			name:      "container mentions resources",
			engine:    "rod",
			container: true,
			contains:  []string{"/usr/bin/chromium", "shared memory"},
		},
		{
			name:        "binary already configured",
			engine:      "rod",
			env:         map[string]string{"WEB2PDF_BROWSER_BIN": "/usr/bin/chromium"},
			notContains: []string{"WEB2PDF_BROWSER_BIN"},
		},
		{
			name:     "playwright suggests install",
			engine:   "playwright",
			env:      map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			contains: []string{"playwright install"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCI(t)
			withContainer(t, tt.container)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			hint := ForBrowserLaunch(tt.engine)

			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q should contain %q", hint, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(hint, unwanted) {
					t.Errorf("hint %q should not contain %q", hint, unwanted)
				}
			}
		})
	}
}

func TestForBrowserLaunch_NothingToSuggest(t *testing.T) {
	clearCI(t)
	withContainer(t, false)
	t.Setenv("WEB2PDF_BROWSER_BIN", "/opt/chrome")

	if hint := ForBrowserLaunch("rod"); hint != "" {
		t.Errorf("expected empty hint, got %q", hint)
	}
}

func TestForTimeout(t *testing.T) {
	t.Parallel()

	if hint := ForTimeout("print"); !strings.Contains(hint, "render.timeouts.print") {
		t.Errorf("ForTimeout(print) = %q", hint)
	}
	if hint := ForTimeout(""); !strings.Contains(hint, "render.timeouts") {
		t.Errorf("ForTimeout(\"\") = %q", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with user config path",
			paths:    []string{"./service.yaml", "/home/me/.config/web2pdf/service.yaml"},
			contains: "create /home/me/.config/web2pdf/service.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	// All hints should start with newline, spaces, and "hint:"
	hints := []string{
		ForTimeout("load"),
		ForAdmission(),
		ForOutputDirectory(),
		ForConfigNotFound(nil),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}

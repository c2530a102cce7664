// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-web2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI runner is detected.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserLaunch returns hints for browser launch failures of the named
// engine ("rod" or "playwright").
func ForBrowserLaunch(engine string) string {
	var hints []string

	if engine == "playwright" {
		hints = append(hints, "install browsers with: go run github.com/playwright-community/playwright-go/cmd/playwright install --with-deps chromium")
	}

	if os.Getenv("WEB2PDF_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		if inCI() || IsInContainer() {
			hints = append(hints, "set WEB2PDF_BROWSER_BIN to the image's Chromium (e.g. /usr/bin/chromium)")
		} else {
			hints = append(hints, "set WEB2PDF_BROWSER_BIN to use a custom Chrome")
		}
	}

	if IsInContainer() {
		hints = append(hints, "give the container more shared memory or CPU if launches time out")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the budget of a slow stage.
func ForTimeout(stage string) string {
	if stage == "" {
		return format("raise render.timeouts in the config file")
	}
	return format("raise render.timeouts." + stage + " in the config file")
}

// ForAdmission returns a hint for renders rejected at capacity.
func ForAdmission() string {
	return format("raise server.maxConcurrent (WEB2PDF_MAX_CONCURRENT) or server.admissionWait")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/web2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/web2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	Service  serviceInfo `json:"service"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Engine  string   `json:"engine"`
	Found   bool     `json:"found"`
	Path    string   `json:"path,omitempty"`
	Source  string   `json:"source,omitempty"` // env, lookup
	Version string   `json:"version,omitempty"`
	Flags   []string `json:"flags"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Runtime       string `json:"runtime_env,omitempty"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// serviceInfo summarizes what serve would use.
type serviceInfo struct {
	Port          int `json:"port"`
	MaxConcurrent int `json:"max_concurrent"`
	CPUs          int `json:"cpus"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	envCfg, err := loadEnvConfig()
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}

	result := runDoctor(envCfg)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(envCfg *envConfig) *doctorResult {
	engine := envCfg.Engine
	if engine == "" {
		engine = web2pdf.EngineRod
	}

	result := &doctorResult{
		Status: statusReady,
		Browser: browserInfo{
			Engine: strings.ToLower(engine),
			Flags:  web2pdf.DefaultLaunchProfile("").Args(),
		},
		Env: envInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Runtime: envCfg.runtimeEnv(),
		},
	}

	checkEngine(result)
	checkBrowser(result, envCfg.browserBin())
	checkEnvironment(result)
	checkService(result, envCfg)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkEngine verifies the engine name resolves.
func checkEngine(result *doctorResult) {
	if _, err := web2pdf.NewEngine(result.Browser.Engine); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
}

// checkBrowser detects the Chrome/Chromium binary the engine would launch.
func checkBrowser(result *doctorResult, override string) {
	path, source := override, "env"
	if path == "" {
		var found bool
		path, found = launcher.LookPath()
		source = "lookup"
		if !found {
			msg := "Chrome/Chromium not found. Install Chromium or set WEB2PDF_BROWSER_BIN"
			if result.Browser.Engine == web2pdf.EngineRod {
				// rod downloads a managed Chromium on first launch.
				result.Warnings = append(result.Warnings, msg+" (rod will download one on first render)")
			} else {
				result.Errors = append(result.Errors, msg)
			}
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Browser not found at %s", path))
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path
	result.Browser.Source = source

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path is the configured browser
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("WEB2PDF_CONTAINER") == "1" {
		return true, "WEB2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkService reports the effective port and concurrency ceiling.
func checkService(result *doctorResult, envCfg *envConfig) {
	cfg, err := resolveConfig("", envCfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Service = serviceInfo{
		Port:          cfg.Server.Port,
		MaxConcurrent: web2pdf.NewLimiter(cfg.Server.MaxConcurrent, 0).Capacity(),
		CPUs:          runtime.GOMAXPROCS(0),
	}
	if result.Service.MaxConcurrent == web2pdf.Unbounded {
		result.Warnings = append(result.Warnings,
			"Concurrency is unbounded; each render starts its own browser")
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "web2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser")
	fmt.Fprintf(w, "  [OK] Engine: %s\n", r.Browser.Engine)
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s (%s)\n", r.Browser.Path, r.Browser.Source)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	fmt.Fprintf(w, "  [OK] Launch flags: %s\n", strings.Join(r.Browser.Flags, " "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Runtime != "" {
		fmt.Fprintf(w, "  [OK] Runtime env: %s\n", r.Env.Runtime)
	}
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Service")
	fmt.Fprintf(w, "  [OK] Port: %d\n", r.Service.Port)
	if r.Service.MaxConcurrent == web2pdf.Unbounded {
		fmt.Fprintln(w, "  [OK] Concurrent renders: unbounded")
	} else {
		fmt.Fprintf(w, "  [OK] Concurrent renders: %d (%d CPUs)\n", r.Service.MaxConcurrent, r.Service.CPUs)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/alnah/go-web2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Lets a container set the service up without a YAML file.
type envConfig struct {
	ConfigPath string `envconfig:"WEB2PDF_CONFIG"`

	// Platform conventions
	Port    int    `envconfig:"PORT"`
	AppEnv  string `envconfig:"APP_ENV"`
	NodeEnv string `envconfig:"NODE_ENV"` // fallback label for images built from the older service

	// Engine
	Engine        string `envconfig:"WEB2PDF_ENGINE"`
	BrowserBin    string `envconfig:"WEB2PDF_BROWSER_BIN"`
	RodBrowserBin string `envconfig:"ROD_BROWSER_BIN"`

	// Service
	MaxConcurrent *int          `envconfig:"WEB2PDF_MAX_CONCURRENT"`
	NavTimeout    time.Duration `envconfig:"WEB2PDF_NAV_TIMEOUT"`
	ExposeDetail  *bool         `envconfig:"WEB2PDF_EXPOSE_DETAIL"`

	// Logging
	LogLevel  string `envconfig:"WEB2PDF_LOG_LEVEL"`
	LogFormat string `envconfig:"WEB2PDF_LOG_FORMAT"`
}

// knownEnvVars lists valid WEB2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"WEB2PDF_CONFIG":         true,
	"WEB2PDF_ENGINE":         true,
	"WEB2PDF_BROWSER_BIN":    true,
	"WEB2PDF_MAX_CONCURRENT": true,
	"WEB2PDF_NAV_TIMEOUT":    true,
	"WEB2PDF_EXPOSE_DETAIL":  true,
	"WEB2PDF_LOG_LEVEL":      true,
	"WEB2PDF_LOG_FORMAT":     true,
	"WEB2PDF_CONTAINER":      true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed values such as a non-numeric PORT are errors, not ignored.
func loadEnvConfig() (*envConfig, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrUsage, err)
	}
	return &env, nil
}

// warnUnknownEnvVars logs warnings for unrecognized WEB2PDF_* variables.
// Helps catch typos like WEB2PDF_LOGLEVEL instead of WEB2PDF_LOG_LEVEL.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "WEB2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// runtimeEnv returns the runtime-environment label, preferring APP_ENV.
func (e *envConfig) runtimeEnv() string {
	if e.AppEnv != "" {
		return e.AppEnv
	}
	return e.NodeEnv
}

// browserBin returns the browser override, preferring WEB2PDF_BROWSER_BIN.
func (e *envConfig) browserBin() string {
	if e.BrowserBin != "" {
		return e.BrowserBin
	}
	return e.RodBrowserBin
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if label := env.runtimeEnv(); label != "" {
		cfg.Server.Env = label
	}
	if env.Engine != "" {
		cfg.Engine.Name = strings.ToLower(env.Engine)
	}
	if bin := env.browserBin(); bin != "" {
		cfg.Engine.BrowserBin = bin
	}
	if env.MaxConcurrent != nil {
		cfg.Server.MaxConcurrent = *env.MaxConcurrent
	}
	if env.NavTimeout > 0 {
		cfg.Render.Timeouts.Navigation = config.Duration(env.NavTimeout)
	}
	if env.ExposeDetail != nil {
		cfg.Server.ExposeDetail = *env.ExposeDetail
	}
	if env.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		cfg.Log.Format = strings.ToLower(env.LogFormat)
	}
}

// resolveConfig builds the effective configuration from defaults, the
// config file (flag or WEB2PDF_CONFIG) and the environment. Flags are
// merged by the caller, which then validates.
func resolveConfig(configFlag string, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path := configFlag
	if path == "" {
		path = env.ConfigPath
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

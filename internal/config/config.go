package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// appDir is the directory under os.UserConfigDir searched by LoadConfig.
const appDir = "web2pdf"

// Config holds all configuration for the render service.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	Render RenderConfig `yaml:"render"`
	Page   PageConfig   `yaml:"page"`
	Hooks  HooksConfig  `yaml:"hooks"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig defines the HTTP surface.
type ServerConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port" validate:"min=0,max=65535"`
	Env               string   `yaml:"env" validate:"max=50"`              // runtime-environment label, logged only
	MaxConcurrent     int      `yaml:"maxConcurrent" validate:"min=-1"`    // -1 = unbounded, 0 = auto
	AdmissionWait     Duration `yaml:"admissionWait" validate:"min=0"`     // queue time before 503
	BodyLimit         int64    `yaml:"bodyLimit" validate:"min=1"`         // bytes
	ExposeDetail      bool     `yaml:"exposeDetail"`                       // include engine detail in 500 bodies
	ShutdownTimeout   Duration `yaml:"shutdownTimeout" validate:"min=0"`   // graceful drain on SIGTERM
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout" validate:"min=0"` // slowloris guard
}

// EngineConfig selects the browser backend.
type EngineConfig struct {
	Name       string `yaml:"name" validate:"omitempty,oneof=rod playwright"`
	BrowserBin string `yaml:"browserBin" validate:"max=4096"` // empty = auto-detect
}

// RenderConfig defines pipeline behavior.
type RenderConfig struct {
	Timeouts    TimeoutsConfig `yaml:"timeouts"`
	LoadingText *string        `yaml:"loadingText" validate:"omitempty,max=200"` // nil = default, "" disables readiness wait
	SettleDelay Duration       `yaml:"settleDelay" validate:"min=0"`             // 0 = print right after readiness
	Viewport    ViewportConfig `yaml:"viewport"`
}

// TimeoutsConfig bounds each stage. Zero keeps the built-in default.
type TimeoutsConfig struct {
	Launch      Duration `yaml:"launch" validate:"min=0"`
	Page        Duration `yaml:"page" validate:"min=0"`
	Seed        Duration `yaml:"seed" validate:"min=0"`
	Navigation  Duration `yaml:"navigation" validate:"min=0"`
	Readiness   Duration `yaml:"readiness" validate:"min=0"`
	PostProcess Duration `yaml:"postProcess" validate:"min=0"`
	Print       Duration `yaml:"print" validate:"min=0"`
}

// ViewportConfig sets the browsing context size in CSS pixels.
type ViewportConfig struct {
	Width  int `yaml:"width" validate:"min=0,max=10000"`
	Height int `yaml:"height" validate:"min=0,max=10000"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size" validate:"omitempty,oneof=a4 letter legal A4 Letter Legal"`
	Orientation string  `yaml:"orientation" validate:"omitempty,oneof=portrait landscape"`
	Margin      float64 `yaml:"margin" validate:"min=0,max=3"`      // inches
	WidthPx     int     `yaml:"widthPx" validate:"min=0,max=10000"` // > 0 = fixed width, computed height
}

// HooksConfig enables DOM post-processing hooks.
type HooksConfig struct {
	StripHeader StripHeaderConfig  `yaml:"stripHeader"`
	Scripts     []ScriptHookConfig `yaml:"scripts" validate:"dive"`
}

// StripHeaderConfig configures the built-in header strip hook.
type StripHeaderConfig struct {
	Enabled        bool   `yaml:"enabled"`
	HeaderSelector string `yaml:"headerSelector" validate:"max=500"`
	RootSelector   string `yaml:"rootSelector" validate:"max=500"`
	TopPadding     string `yaml:"topPadding" validate:"max=20"`
}

// ScriptHookConfig runs a named script from assets.scriptDir.
type ScriptHookConfig struct {
	Name string         `yaml:"name" validate:"required,max=100"`
	Args map[string]any `yaml:"args"`
}

// AssetsConfig defines script loading options.
type AssetsConfig struct {
	ScriptDir string `yaml:"scriptDir"` // Empty = use embedded scripts
}

// LogConfig defines logging output.
type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=console json"`
	File       string `yaml:"file"` // empty = stderr only
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"min=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"min=0"`
	MaxAgeDays int    `yaml:"maxAgeDays" validate:"min=0"`
	Compress   bool   `yaml:"compress"`
}

// Defaults.
const (
	DefaultPort              = 10000
	DefaultBodyLimit         = 10 << 20
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultAdmissionWait     = 10 * time.Second
	DefaultEnv               = "development"
	DefaultSettleDelay       = 2 * time.Second
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			Env:               DefaultEnv,
			AdmissionWait:     Duration(DefaultAdmissionWait),
			BodyLimit:         DefaultBodyLimit,
			ExposeDetail:      true,
			ShutdownTimeout:   Duration(DefaultShutdownTimeout),
			ReadHeaderTimeout: Duration(DefaultReadHeaderTimeout),
		},
		Engine: EngineConfig{Name: "rod"},
		Render: RenderConfig{SettleDelay: Duration(DefaultSettleDelay)},
		Page:   PageConfig{Size: "a4", Orientation: "portrait"},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Validate checks ranges and enumerations.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., after applying env overrides).
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name and
// overlays it on DefaultConfig.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/web2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

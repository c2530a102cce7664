package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-web2pdf/internal/config"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags selects the browser backend.
type engineFlags struct {
	name       string
	browserBin string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common        commonFlags
	engine        engineFlags
	host          string
	port          int
	maxConcurrent int
	logLevel      string
	logFormat     string

	portSet          bool
	maxConcurrentSet bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
	widthPx     int

	marginSet bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common      commonFlags
	engine      engineFlags
	page        pageFlags
	output      string
	timeout     time.Duration
	loadingText string
	settle      time.Duration
	stripHeader bool
	storage     map[string]string
	scriptDir   string

	loadingTextSet bool
	settleSet      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addEngineFlags adds browser selection flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVarP(&f.name, "engine", "e", "", "browser engine: rod, playwright")
	fs.StringVar(&f.browserBin, "browser-bin", "", "browser executable (default: auto-detect)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0-3)")
	fs.IntVar(&f.widthPx, "width-px", 0, "fixed page width in CSS pixels; height follows content")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve")

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	fs.StringVar(&f.host, "host", "", "listen address (default: all interfaces)")
	fs.IntVar(&f.port, "port", 0, "listen port (default 10000)")
	fs.IntVar(&f.maxConcurrent, "max-concurrent", 0, "concurrent renders (0 = auto, -1 = unbounded)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}

	f.portSet = fs.Changed("port")
	f.maxConcurrentSet = fs.Changed("max-concurrent")
	return f, nil
}

// parseRenderFlags parses render command flags. Returns the positional
// target (URL or HTML file).
func parseRenderFlags(args []string) (*renderFlags, string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render")

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addPageFlags(fs, &f.page)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (default report.pdf)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "navigation timeout (e.g. 45s, 2m)")
	fs.StringVar(&f.loadingText, "loading-text", "", "wait until this text leaves the page (\"\" disables)")
	fs.DurationVar(&f.settle, "settle", 0, "pause before printing (e.g. 2s)")
	fs.BoolVar(&f.stripHeader, "strip-header", false, "remove the site header before printing")
	fs.StringToStringVarP(&f.storage, "storage", "s", nil, "localStorage entries as key=value (URL targets only)")
	fs.StringVar(&f.scriptDir, "script-dir", "", "directory with custom scripts/ overrides")

	if err := fs.Parse(args); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return nil, "", fmt.Errorf("%w: render needs exactly one URL or HTML file", ErrUsage)
	}

	f.page.marginSet = fs.Changed("margin")
	f.loadingTextSet = fs.Changed("loading-text")
	f.settleSet = fs.Changed("settle")
	return f, fs.Arg(0), nil
}

// mergeEngineFlags applies engine flags over cfg.
func mergeEngineFlags(f engineFlags, cfg *config.Config) {
	if f.name != "" {
		cfg.Engine.Name = f.name
	}
	if f.browserBin != "" {
		cfg.Engine.BrowserBin = f.browserBin
	}
}

// mergeServeFlags applies serve flags over cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeEngineFlags(f.engine, cfg)
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.portSet {
		cfg.Server.Port = f.port
	}
	if f.maxConcurrentSet {
		cfg.Server.MaxConcurrent = f.maxConcurrent
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
	}
}

// mergeRenderFlags applies render flags over cfg.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) {
	mergeEngineFlags(f.engine, cfg)
	if f.page.size != "" {
		cfg.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Page.Orientation = f.page.orientation
	}
	if f.page.marginSet {
		cfg.Page.Margin = f.page.margin
	}
	if f.page.widthPx > 0 {
		cfg.Page.WidthPx = f.page.widthPx
	}
	if f.timeout > 0 {
		cfg.Render.Timeouts.Navigation = config.Duration(f.timeout)
	}
	if f.loadingTextSet {
		text := f.loadingText
		cfg.Render.LoadingText = &text
	}
	if f.settleSet {
		cfg.Render.SettleDelay = config.Duration(f.settle)
	}
	if f.stripHeader {
		cfg.Hooks.StripHeader.Enabled = true
	}
	if f.scriptDir != "" {
		cfg.Assets.ScriptDir = f.scriptDir
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
	}
}

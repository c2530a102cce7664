package web2pdf

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeouts    Timeouts
	loadingText string
	settleDelay time.Duration
	page        *PageSettings
	viewport    Viewport
	browserBin  string
	scriptDir   string
}

// WithEngine sets the browser engine. Defaults to RodEngine.
func WithEngine(e Engine) Option {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTimeouts sets per-stage budgets. Zero fields keep their defaults.
func WithTimeouts(t Timeouts) Option {
	return func(r *Renderer) {
		r.cfg.timeouts = t.withDefaults()
	}
}

// WithReadiness sets the loading marker the readiness wait polls for.
// An empty marker disables the readiness wait.
func WithReadiness(loadingText string) Option {
	return func(r *Renderer) {
		r.cfg.loadingText = loadingText
	}
}

// WithSettleDelay sets the pause between readiness and post-processing.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("web2pdf: WithSettleDelay duration must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.settleDelay = d
	}
}

// WithPage sets the print page settings. Validated by NewRenderer.
func WithPage(p *PageSettings) Option {
	return func(r *Renderer) {
		r.cfg.page = p
	}
}

// WithViewport sets the browsing context viewport.
func WithViewport(v Viewport) Option {
	return func(r *Renderer) {
		r.cfg.viewport = v
	}
}

// WithPostProcessors appends DOM hooks, run in order before printing.
func WithPostProcessors(p ...PostProcessor) Option {
	return func(r *Renderer) {
		r.postProcessors = append(r.postProcessors, p...)
	}
}

// WithLimiter sets the admission limiter shared by concurrent renders.
func WithLimiter(l *Limiter) Option {
	return func(r *Renderer) {
		r.limiter = l
	}
}

// WithScripts sets the loader for built-in in-page scripts.
func WithScripts(l ScriptLoader) Option {
	return func(r *Renderer) {
		r.scripts = l
	}
}

// WithScriptDir loads scripts from dir first, falling back to the built-in
// set. Ignored when WithScripts is also given.
func WithScriptDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.scriptDir = dir
	}
}

// WithBrowserBin sets the browser executable. Empty means auto-detect.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.cfg.browserBin = path
	}
}

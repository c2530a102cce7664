package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/assets"
	"github.com/alnah/go-web2pdf/internal/config"
	"github.com/alnah/go-web2pdf/internal/logging"
)

// newLogger builds the process logger from cfg.Log.
func newLogger(cfg *config.Config, env *Environment) (*zap.Logger, func(), error) {
	if env.NewLogger != nil {
		return env.NewLogger(), func() {}, nil
	}
	logger, closeFn, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Env:        cfg.Server.Env,
		Version:    Version,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: log: %v", config.ErrInvalidConfig, err)
	}
	return logger, closeFn, nil
}

// buildRenderer wires a Renderer from the effective configuration.
func buildRenderer(cfg *config.Config, logger *zap.Logger, env *Environment) (*web2pdf.Renderer, error) {
	engine, err := env.NewEngine(cfg.Engine.Name)
	if err != nil {
		return nil, err
	}

	scripts, err := assets.NewAssetResolver(cfg.Assets.ScriptDir)
	if err != nil {
		return nil, fmt.Errorf("script directory: %w", err)
	}

	hooks, err := buildHooks(cfg.Hooks, scripts)
	if err != nil {
		return nil, err
	}

	opts := []web2pdf.Option{
		web2pdf.WithEngine(engine),
		web2pdf.WithLogger(logger),
		web2pdf.WithScripts(scripts),
		web2pdf.WithBrowserBin(cfg.Engine.BrowserBin),
		web2pdf.WithTimeouts(buildTimeouts(cfg.Render.Timeouts)),
		web2pdf.WithPage(buildPageSettings(cfg.Page)),
		web2pdf.WithLimiter(web2pdf.NewLimiter(cfg.Server.MaxConcurrent, cfg.Server.AdmissionWait.Std())),
		web2pdf.WithPostProcessors(hooks...),
		web2pdf.WithSettleDelay(cfg.Render.SettleDelay.Std()),
	}
	if cfg.Render.LoadingText != nil {
		opts = append(opts, web2pdf.WithReadiness(*cfg.Render.LoadingText))
	}
	if vp := cfg.Render.Viewport; vp.Width > 0 && vp.Height > 0 {
		opts = append(opts, web2pdf.WithViewport(web2pdf.Viewport{Width: vp.Width, Height: vp.Height}))
	}

	return web2pdf.NewRenderer(opts...)
}

// buildHooks creates the configured post-processors, header strip first.
func buildHooks(cfg config.HooksConfig, scripts web2pdf.ScriptLoader) ([]web2pdf.PostProcessor, error) {
	var hooks []web2pdf.PostProcessor

	if sh := cfg.StripHeader; sh.Enabled {
		h, err := web2pdf.NewHeaderStrip(scripts, web2pdf.HeaderStrip{
			HeaderSelector: sh.HeaderSelector,
			RootSelector:   sh.RootSelector,
			TopPadding:     sh.TopPadding,
		})
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}

	for _, sc := range cfg.Scripts {
		h, err := web2pdf.NewScriptHook(scripts, sc.Name, sc.Args)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}

	return hooks, nil
}

// buildTimeouts converts config durations; zero fields keep library defaults.
func buildTimeouts(t config.TimeoutsConfig) web2pdf.Timeouts {
	return web2pdf.Timeouts{
		Launch:      t.Launch.Std(),
		Page:        t.Page.Std(),
		Seed:        t.Seed.Std(),
		Navigation:  t.Navigation.Std(),
		Readiness:   t.Readiness.Std(),
		PostProcess: t.PostProcess.Std(),
		Print:       t.Print.Std(),
	}
}

func buildPageSettings(p config.PageConfig) *web2pdf.PageSettings {
	return &web2pdf.PageSettings{
		Size:        p.Size,
		Orientation: p.Orientation,
		Margin:      p.Margin,
		WidthPx:     p.WidthPx,
	}
}

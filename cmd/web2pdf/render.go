package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/fileutil"
	"github.com/alnah/go-web2pdf/internal/hints"
)

// Sentinel errors for the render command.
var (
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF")
)

// runRenderCmd renders one URL or HTML file to disk.
func runRenderCmd(args []string, env *Environment) int {
	flags, target, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		printRenderUsage(env.Stderr)
		return exitCodeFor(err)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := renderOnce(ctx, flags, target, env); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// renderOnce resolves configuration, renders target and writes the PDF.
func renderOnce(ctx context.Context, flags *renderFlags, target string, env *Environment) error {
	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return withConfigHint(err)
	}
	mergeRenderFlags(flags, cfg)
	// One-shot renders never queue behind themselves.
	cfg.Server.MaxConcurrent = -1
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !flags.common.verbose {
		cfg.Log.Level = "error"
	}

	logger, closeLog, err := newLogger(cfg, env)
	if err != nil {
		return err
	}
	defer closeLog()

	req, err := buildRequest(target, flags.storage, cfg.Server.BodyLimit)
	if err != nil {
		return err
	}

	r, err := buildRenderer(cfg, logger, env)
	if err != nil {
		return err
	}

	start := env.Now()
	res, err := r.Render(ctx, req)
	if err != nil {
		return withRenderHint(err, cfg.Engine.Name)
	}

	outPath := fileutil.ResolveOutputPath(flags.output, res.Filename)
	if err := fileutil.WriteFileAtomic(outPath, res.PDF, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w%s", ErrWritePDF, outPath, err, hints.ForOutputDirectory())
	}

	if !flags.common.quiet {
		for _, o := range res.Diagnostics {
			if o.Kind == web2pdf.DegradedContinue {
				fmt.Fprintf(env.Stderr, "warning: %s degraded: %s\n", o.Stage, o.Reason)
			}
		}
		fmt.Fprintf(env.Stdout, "%s (%d bytes, %s)\n", outPath, len(res.PDF), env.Now().Sub(start).Round(time.Millisecond))
	}
	logger.Debug("render written", zap.String("path", outPath))
	return nil
}

// buildRequest turns the positional target into a Request. URLs are
// rendered directly; anything else is read as an HTML file.
func buildRequest(target string, storage map[string]string, limit int64) (web2pdf.Request, error) {
	if fileutil.IsURL(target) {
		return web2pdf.Request{URL: target, StorageSeed: storage}, nil
	}

	data, err := fileutil.ReadLimited(target, limit)
	if err != nil {
		return web2pdf.Request{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return web2pdf.Request{}, fmt.Errorf("%w: %s is empty", web2pdf.ErrInvalidRequest, target)
	}
	return web2pdf.Request{HTML: string(data), StorageSeed: storage}, nil
}

// withRenderHint appends actionable hints to launch and timeout failures.
func withRenderHint(err error, engine string) error {
	var re *web2pdf.RenderError
	if !errors.As(err, &re) {
		return err
	}
	switch {
	case errors.Is(err, web2pdf.ErrLaunch):
		return fmt.Errorf("%w%s", err, hints.ForBrowserLaunch(engine))
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout(timeoutKey(re.Stage)))
	}
	return err
}

// timeoutKey names the render.timeouts field bounding stage.
func timeoutKey(stage web2pdf.Stage) string {
	switch stage {
	case web2pdf.StageLoad:
		return "navigation"
	case web2pdf.StagePostProcess:
		return "postProcess"
	case web2pdf.StageLaunch, web2pdf.StagePage, web2pdf.StageSeed,
		web2pdf.StageReadiness, web2pdf.StagePrint:
		return string(stage)
	}
	return ""
}

package web2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-web2pdf/internal/process"
)

// Compile-time interface checks.
var (
	_ Engine          = (*RodEngine)(nil)
	_ Instance        = (*rodInstance)(nil)
	_ BrowsingContext = (*rodContext)(nil)
)

const (
	// probeTimeout bounds the liveness check run after a failed browser call.
	probeTimeout = 2 * time.Second
	// closeTimeout bounds the graceful shutdown before the process is killed.
	closeTimeout = 5 * time.Second
)

// RodEngine drives Chrome/Chromium through go-rod.
// Rod downloads a managed Chromium on first run if no binary is found.
type RodEngine struct{}

// NewRodEngine creates a RodEngine.
func NewRodEngine() *RodEngine {
	return &RodEngine{}
}

// Name returns "rod".
func (e *RodEngine) Name() string { return EngineRod }

// Launch starts a browser with the given profile and connects to it.
// The context bounds startup only; the browser outlives it.
func (e *RodEngine) Launch(ctx context.Context, profile LaunchProfile) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Headless(profile.Headless)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if profile.BinaryPath != "" {
		l = l.Bin(profile.BinaryPath)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	for _, f := range profile.Flags {
		l = l.Set(flags.Flag(f))
	}

	// Reap the browser if it comes up after we gave up on it.
	u, err := runReaped(ctx, l.Launch, func(string) {
		l.Kill()
		l.Cleanup()
	})
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, err
	}

	return &rodInstance{launcher: l, browser: browser}, nil
}

// rodInstance owns one launched browser process.
type rodInstance struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewContext opens an incognito page sized to the viewport. ctx bounds each
// call; the page and its session live on the browser's own context.
func (i *rodInstance) NewContext(ctx context.Context, opts ContextOptions) (BrowsingContext, error) {
	// Single-process Chrome builds occasionally refuse extra browser
	// contexts; the default context is still per-instance.
	target := i.browser
	if incognito, err := i.browser.Context(ctx).Incognito(); err == nil {
		target = incognito.Context(i.browser.GetContext())
	}

	page, err := runReaped(ctx, func() (*rod.Page, error) {
		return target.Page(proto.TargetCreateTarget{})
	}, func(late *rod.Page) {
		_ = late.Close()
	})
	if err != nil {
		return nil, i.classify(err)
	}

	vp := opts.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = DefaultViewport()
	}
	if err := page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, i.classify(err)
	}

	return &rodContext{inst: i, page: page}, nil
}

// Close shuts the browser down. When the graceful close fails or overruns
// closeTimeout the whole process group is killed so no orphaned renderer
// survives.
func (i *rodInstance) Close() error {
	err := shutdown(closeTimeout, func(ctx context.Context) error {
		return i.browser.Context(ctx).Close()
	}, i.kill)
	i.launcher.Cleanup()
	return err
}

func (i *rodInstance) kill() error {
	err := process.KillProcessGroup(i.launcher.PID())
	i.launcher.Kill()
	return err
}

// shutdown runs graceful within d and falls back to force when it fails or
// does not return in time.
func shutdown(d time.Duration, graceful func(context.Context) error, force func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	err := runWithContext(ctx, func() error { return graceful(ctx) })
	if err == nil {
		return nil
	}
	if ferr := force(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	return err
}

// classify wraps err with ErrEngineCrashed when the browser no longer answers.
func (i *rodInstance) classify(err error) error {
	if err == nil {
		return nil
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if _, perr := (proto.BrowserGetVersion{}).Call(i.browser.Context(probeCtx)); perr != nil {
		return fmt.Errorf("%w: %v", ErrEngineCrashed, err)
	}
	return err
}

// rodContext is one page inside a rodInstance.
type rodContext struct {
	inst *rodInstance
	page *rod.Page
}

func (c *rodContext) Navigate(ctx context.Context, url string, wait WaitPolicy) error {
	p := c.page.Context(ctx)

	if wait == WaitDOMContentLoaded {
		waitNav := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
		if err := p.Navigate(url); err != nil {
			return c.fail(ctx, err)
		}
		waitNav()
		return ctx.Err()
	}

	if err := p.Navigate(url); err != nil {
		return c.fail(ctx, err)
	}
	if err := p.WaitLoad(); err != nil {
		return c.fail(ctx, err)
	}
	return nil
}

func (c *rodContext) SetContent(ctx context.Context, html string, wait WaitPolicy) error {
	p := c.page.Context(ctx)
	if err := p.SetDocumentContent(html); err != nil {
		return c.fail(ctx, err)
	}
	if wait == WaitLoad {
		if err := p.WaitLoad(); err != nil {
			return c.fail(ctx, err)
		}
	}
	return nil
}

func (c *rodContext) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	res, err := c.page.Context(ctx).Eval(script, args...)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return res.Value.Val(), nil
}

func (c *rodContext) WaitFor(ctx context.Context, predicate string, args ...any) error {
	if err := c.page.Context(ctx).Wait(rod.Eval(predicate, args...)); err != nil {
		return c.fail(ctx, err)
	}
	return nil
}

func (c *rodContext) PrintToPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	reader, err := c.page.Context(ctx).PDF(buildRodPDFOptions(opts))
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", c.fail(ctx, err))
	}
	return pdfBuf, nil
}

// fail reports timeouts as-is and probes the browser for anything else.
func (c *rodContext) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%v: %w", err, ctx.Err())
	}
	return c.inst.classify(err)
}

// buildRodPDFOptions converts engine-neutral options to a CDP print request.
func buildRodPDFOptions(opts PrintOptions) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PrintBackground: opts.PrintBackground,
		PaperWidth:      floatPtr(opts.PaperWidth),
		PaperHeight:     floatPtr(opts.PaperHeight),
		MarginTop:       floatPtr(opts.MarginTop),
		MarginBottom:    floatPtr(opts.MarginBottom),
		MarginLeft:      floatPtr(opts.MarginLeft),
		MarginRight:     floatPtr(opts.MarginRight),
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

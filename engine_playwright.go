package web2pdf

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Compile-time interface checks.
var (
	_ Engine          = (*PlaywrightEngine)(nil)
	_ Instance        = (*playwrightInstance)(nil)
	_ BrowsingContext = (*playwrightContext)(nil)
)

// PlaywrightEngine drives Chromium through playwright-go. The Playwright
// driver and browsers must be installed beforehand
// (go run github.com/playwright-community/playwright-go/cmd/playwright install chromium).
type PlaywrightEngine struct {
	// launch starts the driver and browser; replaced in tests.
	launch func(ctx context.Context, profile LaunchProfile) (Instance, error)
}

// NewPlaywrightEngine creates a PlaywrightEngine.
func NewPlaywrightEngine() *PlaywrightEngine {
	return &PlaywrightEngine{launch: launchPlaywright}
}

// Name returns "playwright".
func (e *PlaywrightEngine) Name() string { return EnginePlaywright }

// Launch starts the Playwright driver and a Chromium browser.
// The context bounds startup only; the browser outlives it.
func (e *PlaywrightEngine) Launch(ctx context.Context, profile LaunchProfile) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	launch := e.launch
	if launch == nil {
		launch = launchPlaywright
	}

	return runReaped(ctx, func() (Instance, error) {
		return launch(ctx, profile)
	}, func(late Instance) {
		if late != nil {
			_ = late.Close()
		}
	})
}

func launchPlaywright(ctx context.Context, profile LaunchProfile) (Instance, error) {
	pw, err := playwright.Run(&playwright.RunOptions{SkipInstallBrowsers: true})
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(profile.Headless),
		Args:     profile.Args(),
		Timeout:  timeoutMillis(ctx),
	}
	if profile.BinaryPath != "" {
		opts.ExecutablePath = playwright.String(profile.BinaryPath)
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return &playwrightInstance{pw: pw, browser: browser}, nil
}

// playwrightInstance owns the driver process and one browser.
type playwrightInstance struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (i *playwrightInstance) NewContext(ctx context.Context, opts ContextOptions) (BrowsingContext, error) {
	vp := opts.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = DefaultViewport()
	}

	page, err := runReaped(ctx, func() (playwright.Page, error) {
		bctx, err := i.browser.NewContext(playwright.BrowserNewContextOptions{
			Viewport: &playwright.Size{Width: vp.Width, Height: vp.Height},
		})
		if err != nil {
			return nil, err
		}
		page, err := bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			return nil, err
		}
		return page, nil
	}, func(late playwright.Page) {
		_ = late.Context().Close()
	})
	if err != nil {
		return nil, i.classify(err)
	}
	return &playwrightContext{inst: i, page: page}, nil
}

// Close closes the browser and stops the driver. Both steps always run.
func (i *playwrightInstance) Close() error {
	var errs []error
	if i.browser != nil {
		if err := i.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}
	}
	if i.pw != nil {
		if err := i.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (i *playwrightInstance) classify(err error) error {
	if err == nil {
		return nil
	}
	if !i.browser.IsConnected() {
		return fmt.Errorf("%w: %v", ErrEngineCrashed, err)
	}
	return err
}

type playwrightContext struct {
	inst *playwrightInstance
	page playwright.Page
}

func (c *playwrightContext) Navigate(ctx context.Context, url string, wait WaitPolicy) error {
	return c.fail(ctx, runWithContext(ctx, func() error {
		_, err := c.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: waitUntil(wait),
			Timeout:   timeoutMillis(ctx),
		})
		return err
	}))
}

func (c *playwrightContext) SetContent(ctx context.Context, html string, wait WaitPolicy) error {
	return c.fail(ctx, runWithContext(ctx, func() error {
		return c.page.SetContent(html, playwright.PageSetContentOptions{
			WaitUntil: waitUntil(wait),
			Timeout:   timeoutMillis(ctx),
		})
	}))
}

// Evaluate passes at most one argument; Playwright functions take a single arg.
func (c *playwrightContext) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	var out any
	err := runWithContext(ctx, func() error {
		var err error
		out, err = c.page.Evaluate(script, args...)
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return out, nil
}

func (c *playwrightContext) WaitFor(ctx context.Context, predicate string, args ...any) error {
	var arg any
	if len(args) > 0 {
		arg = args[0]
	}
	return c.fail(ctx, runWithContext(ctx, func() error {
		_, err := c.page.WaitForFunction(predicate, arg, playwright.PageWaitForFunctionOptions{
			Timeout: timeoutMillis(ctx),
		})
		return err
	}))
}

func (c *playwrightContext) PrintToPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	var pdf []byte
	err := runWithContext(ctx, func() error {
		var err error
		pdf, err = c.page.PDF(buildPlaywrightPDFOptions(opts))
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return pdf, nil
}

func (c *playwrightContext) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%v: %w", err, ctx.Err())
	}
	return c.inst.classify(err)
}

// buildPlaywrightPDFOptions converts engine-neutral options; sizes are inches.
func buildPlaywrightPDFOptions(opts PrintOptions) playwright.PagePdfOptions {
	return playwright.PagePdfOptions{
		Width:           playwright.String(inches(opts.PaperWidth)),
		Height:          playwright.String(inches(opts.PaperHeight)),
		PrintBackground: playwright.Bool(opts.PrintBackground),
		Margin: &playwright.Margin{
			Top:    playwright.String(inches(opts.MarginTop)),
			Bottom: playwright.String(inches(opts.MarginBottom)),
			Left:   playwright.String(inches(opts.MarginLeft)),
			Right:  playwright.String(inches(opts.MarginRight)),
		},
	}
}

func inches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}

func waitUntil(w WaitPolicy) *playwright.WaitUntilState {
	if w == WaitDOMContentLoaded {
		return playwright.WaitUntilStateDomcontentloaded
	}
	return playwright.WaitUntilStateLoad
}

// timeoutMillis converts the context deadline into a Playwright timeout.
// Zero means no timeout, which Playwright also interprets as unbounded.
func timeoutMillis(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return playwright.Float(0)
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

// runWithContext runs fn and returns early when ctx ends. Playwright calls
// are not context-aware; fn keeps running until its own timeout or until the
// browser is closed by teardown.
func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

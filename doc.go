// Package web2pdf renders a web page or raw HTML to PDF using a headless
// browser.
//
// # Quick Start
//
// Create a renderer and render a URL:
//
//	r, err := web2pdf.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := r.Render(ctx, web2pdf.Request{URL: "https://example.com"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.pdf", res.PDF, 0644)
//
// Set Request.HTML instead of URL to print inline markup. When both are set
// the URL is used.
//
// # Render Pipeline
//
// Every request gets a fresh browser instance that is torn down before
// Render returns. The stages run in order:
//
//  1. launch: start the browser with a fixed, hardened profile
//  2. page: open an isolated browsing context
//  3. seed: write Request.StorageSeed to localStorage of the target origin
//  4. load: navigate to the URL or inject the HTML
//  5. readiness: wait until the loading marker disappears from the page
//  6. settle: fixed pause for late rendering
//  7. postprocess: run DOM hooks (see PostProcessor)
//  8. print: produce the PDF
//  9. teardown: close the browser
//
// Each stage is bounded by its own timeout (see Timeouts). Seed, load,
// readiness, settle and postprocess failures are degraded: the render
// continues with whatever the page shows and the stage is listed in
// Result.Diagnostics. Launch, page and print failures abort with a
// *RenderError. Canceling the context aborts with ErrCanceled.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := web2pdf.NewRenderer(
//	    web2pdf.WithEngine(web2pdf.NewPlaywrightEngine()),
//	    web2pdf.WithTimeouts(web2pdf.Timeouts{Navigation: time.Minute}),
//	    web2pdf.WithReadiness("Please wait"),
//	    web2pdf.WithPage(&web2pdf.PageSettings{Size: "letter", Margin: 0.5}),
//	    web2pdf.WithLogger(logger),
//	)
//
// # Concurrency
//
// A Renderer is safe for concurrent use. A Limiter caps how many browsers run
// at once; requests beyond capacity wait up to the admission window and then
// fail with ErrAdmission:
//
//	r, err := web2pdf.NewRenderer(web2pdf.WithLimiter(web2pdf.NewLimiter(4, 10*time.Second)))
//
// # Custom Scripts
//
// In-page scripts (readiness check, storage seeding, header strip) are
// embedded. WithScriptDir overrides them from a directory, which can also
// hold extra hooks for NewScriptHook:
//
//	scripts/
//	├── readiness.js
//	└── hide_banner.js
//
// Each script is a single function expression taking one argument.
package web2pdf

package main

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// testPDF is what stubEngine prints.
var testPDF = []byte("%PDF-1.7\n% stub\n%%EOF")

// stubEngine is a healthy in-process browser: every call succeeds.
type stubEngine struct {
	launchErr error

	mu       sync.Mutex
	launches int
	urls     []string
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Launch(context.Context, web2pdf.LaunchProfile) (web2pdf.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	return &stubInstance{eng: e}, nil
}

func (e *stubEngine) navigated() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.urls...)
}

type stubInstance struct{ eng *stubEngine }

func (i *stubInstance) NewContext(context.Context, web2pdf.ContextOptions) (web2pdf.BrowsingContext, error) {
	return &stubPage{eng: i.eng}, nil
}

func (i *stubInstance) Close() error { return nil }

type stubPage struct{ eng *stubEngine }

func (p *stubPage) Navigate(_ context.Context, url string, _ web2pdf.WaitPolicy) error {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	p.eng.urls = append(p.eng.urls, url)
	return nil
}

func (p *stubPage) SetContent(context.Context, string, web2pdf.WaitPolicy) error { return nil }

func (p *stubPage) Evaluate(context.Context, string, ...any) (any, error) {
	return float64(2000), nil
}

func (p *stubPage) WaitFor(context.Context, string, ...any) error { return nil }

func (p *stubPage) PrintToPDF(context.Context, web2pdf.PrintOptions) ([]byte, error) {
	return testPDF, nil
}

// Compile-time interface checks.
var (
	_ web2pdf.Engine          = (*stubEngine)(nil)
	_ web2pdf.Instance        = (*stubInstance)(nil)
	_ web2pdf.BrowsingContext = (*stubPage)(nil)
)

// ---------------------------------------------------------------------------
// Environment helpers
// ---------------------------------------------------------------------------

// testEnv returns an Environment backed by buffers and eng.
func testEnv(t *testing.T, eng web2pdf.Engine) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
		NewEngine: func(string) (web2pdf.Engine, error) {
			return eng, nil
		},
		NewLogger: zap.NewNop,
	}
	return env, &stdout, &stderr
}

// clearWeb2PDFEnv unsets variables the commands read so a developer's
// shell cannot leak into tests. Callers must not use t.Parallel.
func clearWeb2PDFEnv(t *testing.T) {
	t.Helper()
	names := []string{"PORT", "APP_ENV", "NODE_ENV", "ROD_BROWSER_BIN"}
	for name := range knownEnvVars {
		names = append(names, name)
	}
	for _, name := range names {
		// Setenv registers the restore; an empty value would not parse as int.
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

package web2pdf

import (
	"context"
	"fmt"
	"strings"
)

// Engine launches browser instances. Implementations wrap a real browser
// automation library; tests substitute a scripted fake.
type Engine interface {
	Name() string
	Launch(ctx context.Context, profile LaunchProfile) (Instance, error)
}

// Instance is one launched browser process. Close must be safe to call once
// per instance; the pipeline guarantees it is called exactly once.
type Instance interface {
	NewContext(ctx context.Context, opts ContextOptions) (BrowsingContext, error)
	Close() error
}

// BrowsingContext is an isolated page inside an Instance.
// Every blocking call is bounded by the context it receives.
type BrowsingContext interface {
	Navigate(ctx context.Context, url string, wait WaitPolicy) error
	SetContent(ctx context.Context, html string, wait WaitPolicy) error
	Evaluate(ctx context.Context, script string, args ...any) (any, error)
	WaitFor(ctx context.Context, predicate string, args ...any) error
	PrintToPDF(ctx context.Context, opts PrintOptions) ([]byte, error)
}

// WaitPolicy selects the lifecycle event a load waits for.
type WaitPolicy int

const (
	WaitLoad WaitPolicy = iota
	WaitDOMContentLoaded
)

func (w WaitPolicy) String() string {
	if w == WaitDOMContentLoaded {
		return "domcontentloaded"
	}
	return "load"
}

// LaunchProfile is the fixed, hardened browser configuration. Sandboxing is
// disabled and the browser runs as a single process so it starts reliably
// inside containers.
type LaunchProfile struct {
	BinaryPath string
	Headless   bool
	Flags      []string
}

// hardenedFlags are passed to every launched browser.
var hardenedFlags = []string{
	"no-sandbox",
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-accelerated-2d-canvas",
	"no-first-run",
	"no-zygote",
	"single-process",
}

// DefaultLaunchProfile returns the hardened profile using binaryPath when set.
func DefaultLaunchProfile(binaryPath string) LaunchProfile {
	return LaunchProfile{
		BinaryPath: binaryPath,
		Headless:   true,
		Flags:      append([]string(nil), hardenedFlags...),
	}
}

// Args renders the profile flags as command-line switches.
func (p LaunchProfile) Args() []string {
	args := make([]string, len(p.Flags))
	for i, f := range p.Flags {
		args[i] = "--" + strings.TrimPrefix(f, "--")
	}
	return args
}

// ContextOptions configures a new browsing context.
type ContextOptions struct {
	Viewport Viewport
}

// PrintOptions is the engine-neutral print configuration, in inches.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	PrintBackground bool
}

// Engine names accepted by NewEngine.
const (
	EngineRod        = "rod"
	EnginePlaywright = "playwright"
)

// NewEngine returns the engine registered under name. Empty means rod.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineRod:
		return NewRodEngine(), nil
	case EnginePlaywright:
		return NewPlaywrightEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownEngine, name, EngineRod, EnginePlaywright)
	}
}

// runReaped runs fn and returns early when ctx ends, like runWithContext,
// for calls that hand back a resource. A value that arrives after ctx ended
// is passed to reap so it is not leaked.
func runReaped[T any](ctx context.Context, fn func() (T, error), reap func(T)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	select {
	case res := <-done:
		return res.v, res.err
	case <-ctx.Done():
		go func() {
			if late := <-done; late.err == nil {
				reap(late.v)
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}

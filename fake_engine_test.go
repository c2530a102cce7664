package web2pdf

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Fake Engine
// ---------------------------------------------------------------------------

// fakePDF is what the fake printer returns unless overridden.
var fakePDF = []byte("%PDF-1.7\n% fake document\n%%EOF")

// fakeEngine is a scripted Engine. Zero-value hooks behave like a healthy
// browser: every call succeeds and print returns fakePDF.
type fakeEngine struct {
	launchErr     error
	newContextErr error
	navigate      func(ctx context.Context, url string) error
	setContent    func(ctx context.Context, html string) error
	evaluate      func(ctx context.Context, script string, args []any) (any, error)
	waitFor       func(ctx context.Context) error
	print         func(ctx context.Context, opts PrintOptions) ([]byte, error)
	closeErr      error

	mu        sync.Mutex
	launches  int
	instances []*fakeInstance
	profiles  []LaunchProfile
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Launch(ctx context.Context, profile LaunchProfile) (Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	e.profiles = append(e.profiles, profile)
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	inst := &fakeInstance{eng: e}
	e.instances = append(e.instances, inst)
	return inst, nil
}

func (e *fakeEngine) launchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

// lastInstance returns the most recently launched instance, or nil.
func (e *fakeEngine) lastInstance() *fakeInstance {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.instances) == 0 {
		return nil
	}
	return e.instances[len(e.instances)-1]
}

type fakeInstance struct {
	eng    *fakeEngine
	closed atomic.Int32
	page   *fakePage
}

func (i *fakeInstance) NewContext(ctx context.Context, opts ContextOptions) (BrowsingContext, error) {
	if i.eng.newContextErr != nil {
		return nil, i.eng.newContextErr
	}
	i.page = &fakePage{eng: i.eng, viewport: opts.Viewport}
	return i.page, nil
}

func (i *fakeInstance) Close() error {
	i.closed.Add(1)
	return i.eng.closeErr
}

func (i *fakeInstance) closeCount() int { return int(i.closed.Load()) }

type fakePage struct {
	eng      *fakeEngine
	viewport Viewport

	mu        sync.Mutex
	calls     []string
	printOpts []PrintOptions
	evalArgs  []any
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) Navigate(ctx context.Context, url string, wait WaitPolicy) error {
	p.record(fmt.Sprintf("navigate %s %s", url, wait))
	if p.eng.navigate != nil {
		return p.eng.navigate(ctx, url)
	}
	return nil
}

func (p *fakePage) SetContent(ctx context.Context, html string, wait WaitPolicy) error {
	p.record("setContent " + wait.String())
	if p.eng.setContent != nil {
		return p.eng.setContent(ctx, html)
	}
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	p.record("evaluate")
	p.mu.Lock()
	if len(args) > 0 {
		p.evalArgs = append(p.evalArgs, args[0])
	}
	p.mu.Unlock()

	if p.eng.evaluate != nil {
		return p.eng.evaluate(ctx, script, args)
	}
	return defaultEvaluate(args)
}

// defaultEvaluate mimics the built-in scripts: the seeder reports how many
// keys it stored, the height probe (no args) reports 2000px.
func defaultEvaluate(args []any) (any, error) {
	if len(args) == 0 {
		return float64(2000), nil
	}
	if m, ok := args[0].(map[string]any); ok {
		if items, ok := m["items"].(map[string]string); ok {
			return float64(len(items)), nil
		}
	}
	return nil, nil
}

func (p *fakePage) WaitFor(ctx context.Context, predicate string, args ...any) error {
	p.record("waitFor")
	if p.eng.waitFor != nil {
		return p.eng.waitFor(ctx)
	}
	return nil
}

func (p *fakePage) PrintToPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	p.record("print")
	p.mu.Lock()
	p.printOpts = append(p.printOpts, opts)
	p.mu.Unlock()
	if p.eng.print != nil {
		return p.eng.print(ctx, opts)
	}
	return fakePDF, nil
}

// stall blocks until ctx ends, like a navigation that never resolves.
func stall(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

// Compile-time interface checks.
var (
	_ Engine          = (*fakeEngine)(nil)
	_ Instance        = (*fakeInstance)(nil)
	_ BrowsingContext = (*fakePage)(nil)
)

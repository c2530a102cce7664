package web2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf/internal/assets"
)

// pdfMagic is the signature every rendered document must start with.
var pdfMagic = []byte("%PDF-")

// Renderer runs the render pipeline: launch, page, seed, load, readiness,
// settle, postprocess, print and teardown. Each request gets its own browser
// instance; a Renderer is safe for concurrent use.
// Create with NewRenderer.
type Renderer struct {
	cfg            rendererConfig
	engine         Engine
	logger         *zap.Logger
	limiter        *Limiter
	scripts        ScriptLoader
	postProcessors []PostProcessor

	readinessJS string
	seedJS      string
	heightJS    string
}

// NewRenderer creates a Renderer with default configuration.
// Returns error if page settings are invalid or a built-in script cannot be
// loaded.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			timeouts:    DefaultTimeouts(),
			loadingText: DefaultLoadingText,
			settleDelay: DefaultSettleDelay,
			page:        DefaultPageSettings(),
			viewport:    DefaultViewport(),
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.page == nil {
		r.cfg.page = DefaultPageSettings()
	}
	if err := r.cfg.page.Validate(); err != nil {
		return nil, err
	}

	if r.engine == nil {
		r.engine = NewRodEngine()
	}
	if r.limiter == nil {
		r.limiter = NewLimiter(0, DefaultAdmissionWait)
	}

	if r.scripts == nil {
		resolver, err := assets.NewAssetResolver(r.cfg.scriptDir)
		if err != nil {
			return nil, fmt.Errorf("resolving script directory: %w", err)
		}
		r.scripts = resolver
	}

	var err error
	if r.readinessJS, err = r.scripts.LoadScript(assets.ScriptReadiness); err != nil {
		return nil, fmt.Errorf("loading readiness script: %w", err)
	}
	if r.seedJS, err = r.scripts.LoadScript(assets.ScriptSeedStorage); err != nil {
		return nil, fmt.Errorf("loading seed script: %w", err)
	}
	if r.heightJS, err = r.scripts.LoadScript(assets.ScriptPageHeight); err != nil {
		return nil, fmt.Errorf("loading page height script: %w", err)
	}

	return r, nil
}

// Engine returns the configured browser engine.
func (r *Renderer) Engine() Engine { return r.engine }

// Limiter returns the admission limiter.
func (r *Renderer) Limiter() *Limiter { return r.limiter }

// session is the per-request browser state. Teardown closes the instance
// exactly once whichever stage ends the render.
type session struct {
	req      Request
	inst     Instance
	page     BrowsingContext
	diag     Diagnostics
	logger   *zap.Logger
	teardown sync.Once
}

func (s *session) record(o StageOutcome) StageOutcome {
	s.diag = append(s.diag, o)
	return o
}

// Render produces a PDF for req.
// Validation failures return ErrInvalidRequest without touching the engine.
// Fatal stage failures return a *RenderError; degraded stages are reported
// in Result.Diagnostics. Canceling ctx aborts the render with ErrCanceled and
// releases the browser immediately.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, newRenderError(StageValidate, ErrInvalidRequest, nil)
	}

	logger := LoggerFromContext(ctx, r.logger).With(zap.String("mode", req.Mode()))

	release, err := r.limiter.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newRenderError(StageAdmit, ErrCanceled, ctx.Err())
		}
		logger.Warn("render rejected", zap.Error(err))
		return nil, newRenderError(StageAdmit, ErrAdmission, err)
	}
	defer release()

	s := &session{req: req, logger: logger}

	if o := r.launch(ctx, s); o.Kind == FatalAbort {
		return nil, r.abort(s, o)
	}
	// Safety net; every return below also tears down explicitly so the
	// outcome lands in the diagnostics.
	defer r.close(s)

	if o := r.openPage(ctx, s); o.Kind == FatalAbort {
		r.close(s)
		return nil, r.abort(s, o)
	}

	stages := []func(context.Context, *session) StageOutcome{
		r.seed,
		r.load,
		r.awaitReady,
		r.settle,
		r.postProcess,
	}
	for _, run := range stages {
		if o := run(ctx, s); o.Kind == FatalAbort {
			r.close(s)
			return nil, r.abort(s, o)
		}
	}

	pdf, o := r.print(ctx, s)
	r.close(s)
	if o.Kind == FatalAbort {
		return nil, r.abort(s, o)
	}

	res := &Result{
		PDF:         pdf,
		ContentType: ContentTypePDF,
		Filename:    DefaultFilename,
		Diagnostics: s.diag,
		Duration:    time.Since(start),
	}
	logger.Info("render complete",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", res.Duration),
		zap.Strings("degraded", stageNames(s.diag.Degraded())),
	)
	return res, nil
}

// runStage executes fn under a stage-scoped timeout and records its outcome.
// A zero timeout inherits the parent deadline.
func (r *Renderer) runStage(ctx context.Context, s *session, stage Stage, timeout time.Duration, fn func(context.Context) StageOutcome) StageOutcome {
	stageCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	o := fn(stageCtx)
	o.Stage = stage
	o.Duration = time.Since(start)

	switch o.Kind {
	case Success:
		s.logger.Debug("stage complete", zap.String("stage", string(stage)), zap.Duration("duration", o.Duration))
	case DegradedContinue:
		s.logger.Warn("stage degraded, continuing", zap.String("stage", string(stage)), zap.String("reason", o.Reason))
	case FatalAbort:
		s.logger.Error("stage failed", zap.String("stage", string(stage)), zap.String("reason", o.Reason))
	}
	return s.record(o)
}

// judge turns a stage error into an outcome. Cancellation of the request
// and engine crashes always abort; otherwise policy decides.
func judge(parent context.Context, stage Stage, err error, policy OutcomeKind) StageOutcome {
	switch {
	case err == nil:
		return succeeded(stage)
	case parent.Err() != nil:
		return aborted(stage, fmt.Errorf("%w: %v", ErrCanceled, parent.Err()))
	case errors.Is(err, ErrEngineCrashed):
		return aborted(stage, err)
	case policy == DegradedContinue:
		return degraded(stage, err)
	default:
		return aborted(stage, err)
	}
}

func (r *Renderer) launch(ctx context.Context, s *session) StageOutcome {
	return r.runStage(ctx, s, StageLaunch, r.cfg.timeouts.Launch, func(stageCtx context.Context) StageOutcome {
		inst, err := r.engine.Launch(stageCtx, DefaultLaunchProfile(r.cfg.browserBin))
		if err != nil {
			return judge(ctx, StageLaunch, err, FatalAbort)
		}
		s.inst = inst
		return succeeded(StageLaunch)
	})
}

func (r *Renderer) openPage(ctx context.Context, s *session) StageOutcome {
	return r.runStage(ctx, s, StagePage, r.cfg.timeouts.Page, func(stageCtx context.Context) StageOutcome {
		page, err := s.inst.NewContext(stageCtx, ContextOptions{Viewport: r.cfg.viewport})
		if err != nil {
			return judge(ctx, StagePage, err, FatalAbort)
		}
		s.page = page
		return succeeded(StagePage)
	})
}

// seed writes the storage seed under the target origin so the main
// navigation starts authenticated. Only runs for URL requests with a seed.
func (r *Renderer) seed(ctx context.Context, s *session) StageOutcome {
	if len(s.req.StorageSeed) == 0 {
		return succeeded(StageSeed)
	}
	if s.req.Mode() != ModeURL {
		s.logger.Debug("storage seed ignored for html request")
		return succeeded(StageSeed)
	}

	return r.runStage(ctx, s, StageSeed, r.cfg.timeouts.Seed, func(stageCtx context.Context) StageOutcome {
		origin, err := storageOrigin(s.req.URL)
		if err != nil {
			return degraded(StageSeed, err)
		}
		if err := s.page.Navigate(stageCtx, origin, WaitDOMContentLoaded); err != nil {
			return judge(ctx, StageSeed, fmt.Errorf("%w: opening origin %s: %w", ErrSeed, origin, err), DegradedContinue)
		}

		out, err := s.page.Evaluate(stageCtx, r.seedJS, map[string]any{"items": s.req.StorageSeed})
		if err != nil {
			return judge(ctx, StageSeed, fmt.Errorf("%w: %w", ErrSeed, err), DegradedContinue)
		}
		stored, ok := toInt(out)
		if !ok || stored != len(s.req.StorageSeed) {
			return degraded(StageSeed, fmt.Errorf("%w: stored %v of %d keys", ErrSeed, out, len(s.req.StorageSeed)))
		}
		return succeeded(StageSeed)
	})
}

// load navigates to the URL or injects the HTML. Failures degrade: whatever
// DOM exists is still printed.
func (r *Renderer) load(ctx context.Context, s *session) StageOutcome {
	return r.runStage(ctx, s, StageLoad, r.cfg.timeouts.Navigation, func(stageCtx context.Context) StageOutcome {
		var err error
		if s.req.Mode() == ModeURL {
			err = s.page.Navigate(stageCtx, s.req.URL, WaitLoad)
		} else {
			err = s.page.SetContent(stageCtx, s.req.HTML, WaitLoad)
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrNavigation, err)
		}
		return judge(ctx, StageLoad, err, DegradedContinue)
	})
}

func (r *Renderer) awaitReady(ctx context.Context, s *session) StageOutcome {
	if r.cfg.loadingText == "" {
		return succeeded(StageReadiness)
	}
	return r.runStage(ctx, s, StageReadiness, r.cfg.timeouts.Readiness, func(stageCtx context.Context) StageOutcome {
		err := s.page.WaitFor(stageCtx, r.readinessJS, map[string]string{"marker": r.cfg.loadingText})
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		return judge(ctx, StageReadiness, err, DegradedContinue)
	})
}

func (r *Renderer) settle(ctx context.Context, s *session) StageOutcome {
	if r.cfg.settleDelay <= 0 {
		return succeeded(StageSettle)
	}
	return r.runStage(ctx, s, StageSettle, 0, func(context.Context) StageOutcome {
		t := time.NewTimer(r.cfg.settleDelay)
		defer t.Stop()
		select {
		case <-t.C:
			return succeeded(StageSettle)
		case <-ctx.Done():
			return judge(ctx, StageSettle, ctx.Err(), DegradedContinue)
		}
	})
}

// postProcess runs every hook under its own timeout. One outcome is recorded
// per hook.
func (r *Renderer) postProcess(ctx context.Context, s *session) StageOutcome {
	last := succeeded(StagePostProcess)
	for _, hook := range r.postProcessors {
		o := r.runStage(ctx, s, StagePostProcess, r.cfg.timeouts.PostProcess, func(stageCtx context.Context) StageOutcome {
			_, err := s.page.Evaluate(stageCtx, hook.Script(), hook.Args())
			if err != nil {
				err = fmt.Errorf("hook %s: %w", hook.Name(), err)
			}
			return judge(ctx, StagePostProcess, err, DegradedContinue)
		})
		if o.Kind == FatalAbort {
			return o
		}
		last = o
	}
	return last
}

// print rasterizes the page. There is no partial PDF to fall back on, so
// every failure aborts.
func (r *Renderer) print(ctx context.Context, s *session) ([]byte, StageOutcome) {
	var pdf []byte
	o := r.runStage(ctx, s, StagePrint, r.cfg.timeouts.Print, func(stageCtx context.Context) StageOutcome {
		opts := buildPrintOptions(r.cfg.page, r.contentHeight(stageCtx, s))

		out, err := s.page.PrintToPDF(stageCtx, opts)
		if err != nil {
			return judge(ctx, StagePrint, err, FatalAbort)
		}
		if len(out) == 0 {
			return aborted(StagePrint, errors.New("engine returned an empty document"))
		}
		if !bytes.HasPrefix(out, pdfMagic) {
			return aborted(StagePrint, errors.New("engine output is not a PDF"))
		}
		pdf = out
		return succeeded(StagePrint)
	})
	return pdf, o
}

// contentHeight measures the document for fixed-width pages. Zero means
// unknown; page sizing then falls back to the configured paper height.
func (r *Renderer) contentHeight(ctx context.Context, s *session) float64 {
	if r.cfg.page == nil || r.cfg.page.WidthPx <= 0 {
		return 0
	}
	out, err := s.page.Evaluate(ctx, r.heightJS)
	if err != nil {
		s.logger.Debug("page height unavailable", zap.Error(err))
		return 0
	}
	h, _ := toFloat(out)
	return h
}

// close tears the session down once. Failures are logged and recorded, never
// returned; the response is already decided.
func (r *Renderer) close(s *session) {
	s.teardown.Do(func() {
		if s.inst == nil {
			return
		}
		start := time.Now()
		err := s.inst.Close()
		o := succeeded(StageTeardown)
		if err != nil {
			o = degraded(StageTeardown, err)
			s.logger.Warn("teardown failed", zap.Error(err))
		}
		o.Duration = time.Since(start)
		s.record(o)
	})
}

// abort converts a fatal outcome into the error returned to the caller.
func (r *Renderer) abort(s *session, o StageOutcome) error {
	sentinel := ErrEngineCrashed
	switch {
	case errors.Is(o.Err, ErrCanceled):
		return newRenderError(o.Stage, ErrCanceled, o.Err)
	case o.Stage == StageLaunch:
		sentinel = ErrLaunch
	case o.Stage == StagePage:
		sentinel = ErrPageCreate
	case o.Stage == StagePrint:
		sentinel = ErrPrint
	}
	return newRenderError(o.Stage, sentinel, o.Err)
}

// storageOrigin returns scheme://host[:port] of raw.
func storageOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: parsing url: %v", ErrSeed, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: url %q has no origin", ErrSeed, raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// toFloat normalizes numbers decoded by either engine.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	return int(f), ok
}

func stageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	return names
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger used by Render.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext returns the logger attached to ctx, or fallback.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}

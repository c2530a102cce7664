package web2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for render operations.
var (
	ErrInvalidRequest = errors.New("need url or html")
	ErrAdmission      = errors.New("render capacity unavailable")
	ErrLaunch         = errors.New("failed to launch browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPrint          = errors.New("PDF generation failed")
	ErrCanceled       = errors.New("render canceled")

	// ErrEngineCrashed marks engine-level failures (browser process gone,
	// connection closed). Any stage observing it aborts the render.
	ErrEngineCrashed = errors.New("browser engine crashed")

	// Navigation and readiness errors. These never fail a render on their
	// own; they are recorded as degraded outcomes.
	ErrNavigation = errors.New("navigation failed")
	ErrSeed       = errors.New("storage seeding failed")
	ErrNotReady   = errors.New("page not ready")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidWidth       = errors.New("invalid page width")

	ErrUnknownEngine = errors.New("unknown browser engine")
)

// InvalidRequestMessage is the caller-facing text for ErrInvalidRequest.
const InvalidRequestMessage = "Need url or html"

// RenderError is returned by Renderer.Render when a stage aborts the render.
// Message is safe to show callers; Detail carries engine diagnostics.
type RenderError struct {
	Stage   Stage
	Message string
	Detail  string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Message, e.Detail)
}

func (e *RenderError) Unwrap() error { return e.Err }

// newRenderError builds a RenderError whose message comes from the sentinel
// and whose detail comes from the underlying cause.
func newRenderError(stage Stage, sentinel, cause error) *RenderError {
	re := &RenderError{
		Stage:   stage,
		Message: sentinel.Error(),
		Err:     sentinel,
	}
	if cause != nil {
		re.Detail = cause.Error()
		re.Err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return re
}

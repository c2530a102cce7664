package web2pdf

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Request is one render request. Exactly one of URL or HTML is used;
// URL takes precedence when both are set.
type Request struct {
	URL         string            `json:"url,omitempty" validate:"required_without=HTML"`
	HTML        string            `json:"html,omitempty" validate:"required_without=URL"`
	StorageSeed map[string]string `json:"storageSeed,omitempty"`
}

// Mode values reported by Request.Mode.
const (
	ModeURL  = "url"
	ModeHTML = "html"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UnmarshalJSON accepts "localStorage" as an alias for "storageSeed".
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var raw struct {
		plain
		LocalStorage map[string]string `json:"localStorage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Request(raw.plain)
	if r.StorageSeed == nil && raw.LocalStorage != nil {
		r.StorageSeed = raw.LocalStorage
	}
	return nil
}

// Normalize trims surrounding whitespace from URL and HTML so that
// blank values count as absent.
func (r Request) Normalize() Request {
	r.URL = strings.TrimSpace(r.URL)
	if strings.TrimSpace(r.HTML) == "" {
		r.HTML = ""
	}
	return r
}

// Validate reports ErrInvalidRequest when neither URL nor HTML is present.
func (r Request) Validate() error {
	n := r.Normalize()
	if err := validate.Struct(n); err != nil {
		return ErrInvalidRequest
	}
	return nil
}

// Mode reports which content source the pipeline will load.
func (r Request) Mode() string {
	if strings.TrimSpace(r.URL) != "" {
		return ModeURL
	}
	return ModeHTML
}

// Result is a successfully rendered document.
type Result struct {
	PDF         []byte
	ContentType string
	Filename    string
	Diagnostics Diagnostics
	Duration    time.Duration
}

// Response metadata for rendered documents.
const (
	ContentTypePDF  = "application/pdf"
	DefaultFilename = "report.pdf"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.0
)

// MaxWidthPx caps fixed-width rendering.
const MaxWidthPx = 10000

// PageSettings configures PDF page dimensions.
// WidthPx > 0 selects a fixed pixel width with the height computed from the
// rendered document; Size and Orientation are then ignored.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
	WidthPx     int
}

// DefaultPageSettings returns A4 portrait without margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if p.WidthPx < 0 || p.WidthPx > MaxWidthPx {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidWidth, p.WidthPx, MaxWidthPx)
	}

	if p.Size != "" && !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if p.Orientation != "" && !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeA4, PageSizeLetter, PageSizeLegal:
		return true
	}
	return false
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Timeouts bounds each pipeline stage independently.
type Timeouts struct {
	Launch      time.Duration
	Page        time.Duration
	Seed        time.Duration
	Navigation  time.Duration
	Readiness   time.Duration
	PostProcess time.Duration
	Print       time.Duration
}

// DefaultTimeouts returns the baseline stage budgets.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Launch:      30 * time.Second,
		Page:        15 * time.Second,
		Seed:        10 * time.Second,
		Navigation:  45 * time.Second,
		Readiness:   30 * time.Second,
		PostProcess: 10 * time.Second,
		Print:       60 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultTimeouts.
func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Launch <= 0 {
		t.Launch = d.Launch
	}
	if t.Page <= 0 {
		t.Page = d.Page
	}
	if t.Seed <= 0 {
		t.Seed = d.Seed
	}
	if t.Navigation <= 0 {
		t.Navigation = d.Navigation
	}
	if t.Readiness <= 0 {
		t.Readiness = d.Readiness
	}
	if t.PostProcess <= 0 {
		t.PostProcess = d.PostProcess
	}
	if t.Print <= 0 {
		t.Print = d.Print
	}
	return t
}

// Viewport is the browsing context's CSS pixel size.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport matches a common desktop layout.
func DefaultViewport() Viewport {
	return Viewport{Width: 1280, Height: 800}
}

// Readiness defaults.
const (
	DefaultLoadingText = "Loading..."
	DefaultSettleDelay = 2 * time.Second
)

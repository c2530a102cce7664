package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/hints"
)

// Response bodies and headers.
const (
	livenessText   = "PDF service is running"
	degradedHeader = "X-Render-Degraded"
)

// renderer is the subset of *web2pdf.Renderer the handlers use.
type renderer interface {
	Render(ctx context.Context, req web2pdf.Request) (*web2pdf.Result, error)
	Engine() web2pdf.Engine
	Limiter() *web2pdf.Limiter
}

// Compile-time interface check.
var _ renderer = (*web2pdf.Renderer)(nil)

// handlers serves the HTTP surface.
type handlers struct {
	renderer     renderer
	bodyLimit    int64
	exposeDetail bool
}

// errorBody is the JSON error payload.
type errorBody struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// healthBody is the GET /healthz payload.
type healthBody struct {
	Status   string `json:"status"`
	Engine   string `json:"engine"`
	InFlight int    `json:"inFlight"`
	Capacity int    `json:"capacity"`
}

// liveness answers GET /.
func (h *handlers) liveness(c *gin.Context) {
	c.String(http.StatusOK, livenessText)
}

// health answers GET /healthz with limiter occupancy.
func (h *handlers) health(c *gin.Context) {
	lim := h.renderer.Limiter()
	c.JSON(http.StatusOK, healthBody{
		Status:   "ok",
		Engine:   h.renderer.Engine().Name(),
		InFlight: lim.InFlight(),
		Capacity: lim.Capacity(),
	})
}

// renderPDF answers POST /pdf.
func (h *handlers) renderPDF(c *gin.Context) {
	logger := requestLogger(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit)

	var req web2pdf.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: web2pdf.InvalidRequestMessage})
		return
	}

	ctx := web2pdf.ContextWithLogger(c.Request.Context(), logger)
	res, err := h.renderer.Render(ctx, req)
	if err != nil {
		h.renderFailed(c, logger, err)
		return
	}

	if degraded := res.Diagnostics.DegradedHeader(); degraded != "" {
		c.Header(degradedHeader, degraded)
	}
	c.Header("Content-Disposition", "inline; filename="+res.Filename)
	c.Data(http.StatusOK, res.ContentType, res.PDF)
}

// renderFailed maps a render error to a status code and body.
func (h *handlers) renderFailed(c *gin.Context, logger *zap.Logger, err error) {
	var re *web2pdf.RenderError
	if !errors.As(err, &re) {
		logger.Error("render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody{Error: "PDF generation failed"})
		return
	}

	switch {
	case errors.Is(err, web2pdf.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, errorBody{Error: web2pdf.InvalidRequestMessage})
		return
	case errors.Is(err, web2pdf.ErrAdmission):
		logger.Warn("render rejected at capacity",
			zap.String("hint", strings.TrimPrefix(hints.ForAdmission(), "\n  hint: ")),
		)
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: re.Message, Stage: string(re.Stage)})
		return
	case errors.Is(err, web2pdf.ErrCanceled):
		// The client is gone; nothing useful can be written.
		logger.Info("render canceled", zap.String("stage", string(re.Stage)))
		c.Status(statusClientClosedRequest)
		return
	}

	logger.Error("render failed",
		zap.String("stage", string(re.Stage)),
		zap.String("detail", re.Detail),
	)
	body := errorBody{Error: re.Message, Stage: string(re.Stage)}
	if h.exposeDetail {
		body.Detail = re.Detail
	}
	c.JSON(http.StatusInternalServerError, body)
}

// statusClientClosedRequest is the de facto code for a client that
// disconnected before the response was ready.
const statusClientClosedRequest = 499

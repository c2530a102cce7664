package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(requestID(zap.New(core)), accessLog(), recovery())
	r.GET("/ok", func(c *gin.Context) {
		requestLogger(c).Info("inside handler")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})
	return r, logs
}

// ---------------------------------------------------------------------------
// TestRequestID - caller IDs are echoed, missing or oversized ones replaced
// ---------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		wantEcho bool
	}{
		{"caller supplied", "req-123", true},
		{"missing", "", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, logs := newObservedRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tt.header != "" {
				req.Header.Set(requestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if tt.wantEcho {
				if got != tt.header {
					t.Errorf("%s = %q, want %q", requestIDHeader, got, tt.header)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("%s = %q, want a generated UUID", requestIDHeader, got)
			}

			entries := logs.FilterMessage("inside handler").All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 handler log entry, got %d", len(entries))
			}
			if id := entries[0].ContextMap()["request_id"]; id != got {
				t.Errorf("logged request_id = %v, want %q", id, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestAccessLog - one finished line per request with status
// ---------------------------------------------------------------------------

func TestAccessLog(t *testing.T) {
	t.Parallel()

	router, logs := newObservedRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	started := logs.FilterMessage("request started").All()
	if len(started) != 1 || started[0].Level != zapcore.DebugLevel {
		t.Errorf("expected one debug 'request started' entry, got %d", len(started))
	}

	finished := logs.FilterMessage("request finished").All()
	if len(finished) != 1 {
		t.Fatalf("expected one 'request finished' entry, got %d", len(finished))
	}
	fields := finished[0].ContextMap()
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status field = %v, want %d", fields["status"], http.StatusOK)
	}
	if fields["path"] != "/ok" {
		t.Errorf("path field = %v, want /ok", fields["path"])
	}
	if finished[0].Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want info", finished[0].Level)
	}
}

// ---------------------------------------------------------------------------
// TestRecovery - panics become a logged 500
// ---------------------------------------------------------------------------

func TestRecovery(t *testing.T) {
	t.Parallel()

	router, logs := newObservedRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if body := decodeError(t, w); body.Error != "Internal server error" {
		t.Errorf("error = %q", body.Error)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Errorf("expected 1 'panic recovered' entry, got %d", n)
	}
	finished := logs.FilterMessage("request finished").All()
	if len(finished) != 1 || finished[0].Level != zapcore.WarnLevel {
		t.Errorf("5xx should finish at warn level, got %+v", finished)
	}
}

// ---------------------------------------------------------------------------
// TestRequestLogger_Missing - falls back to a no-op logger
// ---------------------------------------------------------------------------

func TestRequestLogger_Missing(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if requestLogger(c) == nil {
		t.Error("requestLogger should never return nil")
	}
}

package main

// Notes:
// - renderOnce reads the process environment, so tests calling it clear
//   WEB2PDF_* variables and cannot use t.Parallel().
// - The stub engine stands in for a browser; settle is disabled so each
//   render completes immediately.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/fileutil"
)

func quickRenderFlags(output string) *renderFlags {
	return &renderFlags{output: output, settle: 0, settleSet: true}
}

// ---------------------------------------------------------------------------
// TestBuildRequest - URL targets and HTML files
// ---------------------------------------------------------------------------

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("<h1>Hi</h1>"), 0o600); err != nil {
		t.Fatal(err)
	}
	blank := filepath.Join(dir, "blank.html")
	if err := os.WriteFile(blank, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	storage := map[string]string{"token": "abc"}

	t.Run("url", func(t *testing.T) {
		t.Parallel()

		req, err := buildRequest("https://example.com", storage, 1024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.URL != "https://example.com" || req.HTML != "" || req.StorageSeed["token"] != "abc" {
			t.Errorf("req = %+v", req)
		}
	})

	t.Run("html file", func(t *testing.T) {
		t.Parallel()

		req, err := buildRequest(page, nil, 1024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.HTML != "<h1>Hi</h1>" || req.Mode() != web2pdf.ModeHTML {
			t.Errorf("req = %+v", req)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(blank, nil, 1024)
		if !errors.Is(err, web2pdf.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(filepath.Join(dir, "absent.html"), nil, 1024)
		if !errors.Is(err, ErrReadInput) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want ErrReadInput wrapping ErrNotExist", err)
		}
		if exitCodeFor(err) != ExitIO {
			t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitIO)
		}
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(page, nil, 4)
		if !errors.Is(err, fileutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderOnce - writes the PDF and reports it
// ---------------------------------------------------------------------------

func TestRenderOnce(t *testing.T) {
	clearWeb2PDFEnv(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	if err := os.WriteFile(in, []byte("<p>report</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("html to explicit path", func(t *testing.T) {
		env, stdout, _ := testEnv(t, &stubEngine{})
		out := filepath.Join(dir, "out.pdf")

		if err := renderOnce(context.Background(), quickRenderFlags(out), in, env); err != nil {
			t.Fatalf("renderOnce: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.HasPrefix(string(data), "%PDF-") {
			t.Errorf("output is not a PDF: %q", data)
		}
		if !strings.Contains(stdout.String(), out) {
			t.Errorf("stdout = %q, want output path", stdout.String())
		}
	})

	t.Run("url into directory", func(t *testing.T) {
		eng := &stubEngine{}
		env, _, _ := testEnv(t, eng)
		outDir := t.TempDir()

		flags := quickRenderFlags(outDir)
		flags.common.quiet = true
		if err := renderOnce(context.Background(), flags, "https://example.com/r", env); err != nil {
			t.Fatalf("renderOnce: %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, web2pdf.DefaultFilename)); err != nil {
			t.Errorf("expected %s in output dir: %v", web2pdf.DefaultFilename, err)
		}
		if got := eng.navigated(); len(got) != 1 || got[0] != "https://example.com/r" {
			t.Errorf("navigated = %v", got)
		}
	})

	t.Run("launch failure gets a hint", func(t *testing.T) {
		env, _, _ := testEnv(t, &stubEngine{launchErr: errors.New("no chrome")})

		err := renderOnce(context.Background(), quickRenderFlags(filepath.Join(dir, "x.pdf")), in, env)
		if !errors.Is(err, web2pdf.ErrLaunch) {
			t.Fatalf("error = %v, want ErrLaunch", err)
		}
		if !strings.Contains(err.Error(), "hint:") {
			t.Errorf("error should carry a hint: %v", err)
		}
		if exitCodeFor(err) != ExitBrowser {
			t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitBrowser)
		}
	})

	t.Run("invalid page flag", func(t *testing.T) {
		env, _, _ := testEnv(t, &stubEngine{})
		flags := quickRenderFlags(filepath.Join(dir, "y.pdf"))
		flags.page.size = "a0"

		err := renderOnce(context.Background(), flags, in, env)
		if exitCodeFor(err) != ExitUsage {
			t.Errorf("error = %v (exit %d), want usage error", err, exitCodeFor(err))
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		env, _, _ := testEnv(t, &stubEngine{})
		out := filepath.Join(dir, "missing-dir", "z.pdf")

		err := renderOnce(context.Background(), quickRenderFlags(out), in, env)
		if !errors.Is(err, ErrWritePDF) {
			t.Errorf("error = %v, want ErrWritePDF", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestTimeoutKey - stages map to config field names
// ---------------------------------------------------------------------------

func TestTimeoutKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage web2pdf.Stage
		want  string
	}{
		{web2pdf.StageLoad, "navigation"},
		{web2pdf.StagePostProcess, "postProcess"},
		{web2pdf.StagePrint, "print"},
		{web2pdf.StageSettle, ""},
	}
	for _, tt := range tests {
		if got := timeoutKey(tt.stage); got != tt.want {
			t.Errorf("timeoutKey(%s) = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-web2pdf/internal/config"
	"github.com/alnah/go-web2pdf/internal/hints"
)

// newRouter builds the gin engine with middleware and routes.
func newRouter(h *handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestID(logger), accessLog(), recovery())

	r.GET("/", h.liveness)
	r.GET("/healthz", h.health)
	r.POST("/pdf", h.renderPDF)
	return r
}

// runServeCmd starts the HTTP service and blocks until a shutdown signal.
func runServeCmd(args []string, env *Environment) int {
	flags, err := parseServeFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		printServeUsage(env.Stderr)
		return exitCodeFor(err)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := serve(ctx, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// serve resolves configuration, wires the renderer and runs the server
// until ctx ends.
func serve(ctx context.Context, flags *serveFlags, env *Environment) error {
	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return withConfigHint(err)
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, env)
	if err != nil {
		return err
	}
	defer closeLog()

	r, err := buildRenderer(cfg, logger, env)
	if err != nil {
		return err
	}

	gin.SetMode(ginMode(cfg.Server.Env))
	h := &handlers{
		renderer:     r,
		bodyLimit:    cfg.Server.BodyLimit,
		exposeDetail: cfg.Server.ExposeDetail,
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           newRouter(h, logger),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Std(),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	logger.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("engine", r.Engine().Name()),
		zap.Int("capacity", r.Limiter().Capacity()),
	)
	if env.Listen != nil {
		env.Listen(ln.Addr().String())
	}

	return runServer(ctx, srv, ln, cfg.Server.ShutdownTimeout.Std(), logger)
}

// runServer serves on ln until ctx ends, then drains in-flight renders for
// at most drain.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("drain", drain))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ginMode maps the runtime-environment label to a gin mode.
func ginMode(env string) string {
	switch env {
	case "production", "prod":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// withConfigHint appends a config search hint to not-found errors.
func withConfigHint(err error) error {
	if errors.Is(err, config.ErrConfigNotFound) {
		return fmt.Errorf("%w%s", err, hints.ForConfigNotFound([]string{"~/.config/web2pdf/<name>.yaml"}))
	}
	return err
}

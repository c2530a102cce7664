package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-web2pdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// NewEngine builds the browser engine by name. Tests substitute a fake.
	NewEngine func(name string) (web2pdf.Engine, error)

	// NewLogger overrides logger construction when set.
	NewLogger func() *zap.Logger

	// Listen reports the bound address once the server accepts connections.
	Listen func(addr string)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewEngine: web2pdf.NewEngine,
	}
}

// notifyContext returns a context canceled on the first shutdown signal.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

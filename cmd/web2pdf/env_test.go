package main

import (
	"context"
	"os"
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestDefaultEnv - production wiring is complete
// ---------------------------------------------------------------------------

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()
	if env.Now == nil || env.Stdout == nil || env.Stderr == nil || env.NewEngine == nil {
		t.Errorf("DefaultEnv has nil fields: %+v", env)
	}
	if env.NewLogger != nil {
		t.Error("DefaultEnv should build the logger from config")
	}
	eng, err := env.NewEngine("")
	if err != nil || eng.Name() != "rod" {
		t.Errorf("NewEngine(\"\") = %v, %v; want rod", eng, err)
	}
}

// ---------------------------------------------------------------------------
// TestNotifyContext - parent cancellation propagates
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := notifyContext(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if ctx.Err() == nil {
		t.Error("expected context to be done after parent cancel")
	}
}

// ---------------------------------------------------------------------------
// TestShutdownSignals - interrupt always stops the server
// ---------------------------------------------------------------------------

func TestShutdownSignals(t *testing.T) {
	t.Parallel()

	if !slices.Contains(shutdownSignals, os.Interrupt) {
		t.Errorf("shutdownSignals = %v, want os.Interrupt", shutdownSignals)
	}
}

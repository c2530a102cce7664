//go:build windows

package main

import "os"

// shutdownSignals trigger a graceful drain.
// Note: syscall.SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}

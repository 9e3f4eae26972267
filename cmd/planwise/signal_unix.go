//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals are the signals that trigger a graceful shutdown.
// Process managers (systemd, kubernetes) request shutdown with SIGTERM;
// interactive use sends SIGINT.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

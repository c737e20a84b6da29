// File: cmd/morph/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/morph-cli/cmd"
	"github.com/xkilldash9x/morph-cli/internal/observability"
)

// osExit allows tests to intercept process termination.
var osExit = os.Exit

func main() {
	defer handlePanic()

	// Set up a context that listens for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			osExit(0)
			return
		}
		osExit(1)
	}
}

// handlePanic logs an unrecovered panic with its stack and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "morph: fatal panic: %v\n%s\n", r, debug.Stack())
	observability.Sync()
	osExit(2)
}

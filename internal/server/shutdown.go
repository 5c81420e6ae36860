package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext returns a context that is canceled when an interrupt or
// terminate signal is received.
func shutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// If you are AI: This file turns SIGINT/SIGTERM into an orderly
// server shutdown with a bounded grace period.

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownGracePeriod = 5 * time.Second

// ShutdownHandler blocks the main goroutine until a termination signal
// arrives, then drains the server within a grace period.
type ShutdownHandler struct {
	server *Server
	ctx    context.Context
	cancel context.CancelFunc
}

// NewShutdownHandler derives a cancellable shutdown context from
// parent and ties it to server's lifecycle.
func NewShutdownHandler(server *Server, parent context.Context) *ShutdownHandler {
	ctx, cancel := context.WithCancel(parent)
	return &ShutdownHandler{server: server, ctx: ctx, cancel: cancel}
}

// Wait blocks until SIGINT or SIGTERM is received, then cancels the
// shutdown context and drains the server with a bounded grace period.
func (h *ShutdownHandler) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	h.cancel()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	return h.server.Shutdown(drainCtx)
}

// Context returns the context cancelled at the start of shutdown, so
// long-running components can select on it to stop early.
func (h *ShutdownHandler) Context() context.Context {
	return h.ctx
}

// If you are AI: This file defines the relay Task abstraction and the
// shared state every pull/push task variant builds on.

package relay

import (
	"context"
	"nonchalant/internal/core/bus"
)

// Task is a relay job that pulls a remote stream into the local bus or
// pushes a local stream out to a remote endpoint. It runs on its own
// goroutine for the duration of the relay.
type Task interface {
	// Start runs the task until ctx is cancelled or an unrecoverable
	// error occurs.
	Start(ctx context.Context) error

	// Stop requests a clean shutdown of the task.
	Stop() error

	// IsRunning reports whether the task is currently active.
	IsRunning() bool
}

// BaseTask carries the fields and bookkeeping common to every Task
// implementation; concrete task types embed it.
type BaseTask struct {
	registry  *bus.Registry
	app       string
	name      string
	remoteURL string
	reconnect bool
	running   bool
	stopChan  chan struct{}
}

// NewBaseTask builds a BaseTask for the given stream identity and
// remote endpoint.
func NewBaseTask(registry *bus.Registry, app, name, remoteURL string, reconnect bool) *BaseTask {
	return &BaseTask{
		registry:  registry,
		app:       app,
		name:      name,
		remoteURL: remoteURL,
		reconnect: reconnect,
		stopChan:  make(chan struct{}),
	}
}

func (t *BaseTask) App() string {
	return t.app
}

func (t *BaseTask) Name() string {
	return t.name
}

func (t *BaseTask) RemoteURL() string {
	return t.remoteURL
}

func (t *BaseTask) Registry() *bus.Registry {
	return t.registry
}

func (t *BaseTask) IsRunning() bool {
	return t.running
}

func (t *BaseTask) SetRunning(running bool) {
	t.running = running
}

func (t *BaseTask) StopChan() <-chan struct{} {
	return t.stopChan
}

// Stop closes the task's stop channel, waking anything selecting on
// StopChan. Calling it twice panics, same as closing any channel twice.
func (t *BaseTask) Stop() error {
	close(t.stopChan)
	return nil
}

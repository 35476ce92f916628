// If you are AI: This file implements the relay manager.
// Manages lifecycle of all relay tasks (start, stop, restart).

package relay

import (
	"context"
	"fmt"
	"log"
	"sync"

	"nonchalant/internal/config"
	"nonchalant/internal/core/bus"
)

// TaskInfo is a snapshot of one relay task's configuration and state,
// exposed read-only to internal/svc/api.
type TaskInfo struct {
	App       string
	Name      string
	Mode      string
	RemoteURL string
	Running   bool
}

// entry pairs a running Task with the metadata needed to report it,
// since the Task interface itself only exposes lifecycle methods.
type entry struct {
	task Task
	info TaskInfo
}

// Manager manages relay tasks lifecycle.
type Manager struct {
	registry *bus.Registry
	entries  []entry
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewManager creates a new relay manager.
func NewManager(registry *bus.Registry) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartTasks starts all relay tasks from configuration.
func (m *Manager) StartTasks(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, relayCfg := range cfg.Relays {
		// Validate configuration
		if relayCfg.App == "" || relayCfg.Name == "" {
			return fmt.Errorf("relay config missing app or name")
		}
		if relayCfg.Mode != "pull" && relayCfg.Mode != "push" {
			return fmt.Errorf("invalid relay mode: %s (must be 'pull' or 'push')", relayCfg.Mode)
		}
		if relayCfg.RemoteURL == "" {
			return fmt.Errorf("relay config missing remote_url")
		}

		var task Task
		if relayCfg.Mode == "pull" {
			task = NewPullTask(m.registry, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect)
		} else {
			task = NewPushTask(m.registry, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect)
		}

		m.entries = append(m.entries, entry{
			task: task,
			info: TaskInfo{App: relayCfg.App, Name: relayCfg.Name, Mode: relayCfg.Mode, RemoteURL: relayCfg.RemoteURL},
		})

		// Start task in goroutine
		m.wg.Add(1)
		go func(t Task, app, name string) {
			defer m.wg.Done()
			if err := t.Start(m.ctx); err != nil {
				log.Printf("relay: task %s/%s stopped: %v", app, name, err)
			}
		}(task, relayCfg.App, relayCfg.Name)
	}

	return nil
}

// Stop stops all relay tasks and waits for them to finish.
// FIXME: If a task cannot stop cleanly, it may block shutdown.
// Workaround: Use context timeout in caller.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Cancel context to signal all tasks to stop
	m.cancel()

	// Stop all tasks
	for _, e := range m.entries {
		e.task.Stop()
	}

	// Wait for all tasks to finish
	m.wg.Wait()
	return nil
}

// TaskCount returns the number of active relay tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// GetTasks returns a snapshot of every relay task's configuration and
// current running state, for the read-only /api/relay endpoint.
func (m *Manager) GetTasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]TaskInfo, len(m.entries))
	for i, e := range m.entries {
		info := e.info
		info.Running = e.task.IsRunning()
		tasks[i] = info
	}
	return tasks
}

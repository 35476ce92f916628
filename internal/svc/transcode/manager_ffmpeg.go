//go:build ffmpeg
// +build ffmpeg

// If you are AI: This is the ffmpeg-tagged build of Manager. It turns
// each config.TranscodeProfile into a Task that subscribes to the
// matching bus.Stream and hands every message to a Pipeline.

package transcode

import (
	"context"
	"fmt"
	"nonchalant/internal/config"
	"nonchalant/internal/core/bus"
	"sync"
)

// Manager owns the transcode tasks started for configured profiles, in
// the order they were started.
type Manager struct {
	registry *bus.Registry
	tasks    []Task
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewManager returns a Manager bound to registry.
func NewManager(registry *bus.Registry) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry: registry,
		tasks:    make([]Task, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartTasks, when cfg.Transcode.Enabled is set, starts one Task per
// profile in cfg.Transcode.Profiles, attaching each to the bus stream it
// names.
func (m *Manager) StartTasks(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg == nil || cfg.Transcode == nil || !cfg.Transcode.Enabled {
		return nil
	}

	for _, profile := range cfg.Transcode.Profiles {
		key := bus.NewStreamKey(profile.App, profile.Stream)
		stream, _ := m.registry.GetOrCreate(key)

		pipeline, err := NewPipeline("", profile.OutputURL, profile.Format)
		if err != nil {
			return fmt.Errorf("transcode profile %s: %w", profile.Name, err)
		}

		task := NewTask(stream, pipeline)
		if err := task.Start(); err != nil {
			return fmt.Errorf("starting transcode task for %s: %w", key, err)
		}
		m.tasks = append(m.tasks, task)
	}

	return nil
}

// Stop cancels the manager's context and calls Stop on every task. It
// returns without waiting for the tasks' drain goroutines to exit.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()
	for _, task := range m.tasks {
		task.Stop()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-m.ctx.Done():
	}
	return nil
}

// TaskCount reports how many transcode tasks are currently tracked.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

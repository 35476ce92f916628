//go:build !ffmpeg
// +build !ffmpeg

// If you are AI: This is the non-cgo build of Manager. Without FFmpeg
// linked in, transcode profiles in config are accepted but never
// produce running tasks.

package transcode

import (
	"nonchalant/internal/config"
	"nonchalant/internal/core/bus"
)

// Manager owns the set of running transcode tasks for configured
// profiles. The stub build never starts any.
type Manager struct {
	registry *bus.Registry
}

// NewManager returns a Manager bound to registry.
func NewManager(registry *bus.Registry) *Manager {
	return &Manager{registry: registry}
}

// StartTasks is a no-op: this build has no FFmpeg support to transcode with.
func (m *Manager) StartTasks(cfg *config.Config) error {
	return nil
}

// Stop is a no-op.
func (m *Manager) Stop() error {
	return nil
}

// TaskCount always reports zero in this build.
func (m *Manager) TaskCount() int {
	return 0
}

// If you are AI: This file wires the read-only control/introspection
// API: server info, the live stream list, and relay task status. None
// of these handlers may block on or hold locks shared with the media
// hot path.

package api

import (
	"net/http"
	"time"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/svc/relay"
)

// RelayManager is the slice of relay.Manager this package depends on,
// kept narrow so the API can be tested against a fake.
type RelayManager interface {
	TaskCount() int
	GetTasks() []relay.TaskInfo
}

// RelayTaskInfo is the API's JSON projection of a relay task.
type RelayTaskInfo struct {
	App       string `json:"app"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	RemoteURL string `json:"remote_url"`
	Running   bool   `json:"running"`
}

// Service answers /api/* requests against a stream registry and a
// relay manager.
type Service struct {
	registry  *bus.Registry
	relayMgr  RelayManager
	startedAt int64
}

// NewService builds the API service. startedAt is captured at
// construction so /api/server can report uptime.
func NewService(registry *bus.Registry, relayMgr RelayManager) *Service {
	return &Service{
		registry:  registry,
		relayMgr:  relayMgr,
		startedAt: time.Now().Unix(),
	}
}

// RegisterRoutes mounts every /api/* endpoint on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/streams", s.handleStreams)
	mux.HandleFunc("/api/relay", s.handleRelay)
	mux.HandleFunc("/api/relay/restart", s.handleRelayRestart)
}

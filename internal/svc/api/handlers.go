// If you are AI: This file implements the individual /api/* handlers.
// Each is a plain net/http handler rather than a mux sub-router, kept
// that way because the route set is small and fixed.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// ServerResponse is the /api/server payload.
type ServerResponse struct {
	Version         string   `json:"version"`
	Uptime          int64    `json:"uptime"`
	GoVersion       string   `json:"go_version"`
	EnabledServices []string `json:"enabled_services"`
}

// StreamInfo is one entry in the /api/streams payload.
type StreamInfo struct {
	App             string `json:"app"`
	Name            string `json:"name"`
	HasPublisher    bool   `json:"has_publisher"`
	SubscriberCount int    `json:"subscriber_count"`
}

// StreamsResponse is the /api/streams payload.
type StreamsResponse struct {
	Streams []StreamInfo `json:"streams"`
}

// RelayResponse is the /api/relay payload.
type RelayResponse struct {
	Tasks []RelayTaskInfo `json:"tasks"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

var enabledServices = []string{"rtmp_ingest", "http_flv", "ws_flv", "relay"}

func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, ServerResponse{
		Version:         "1.0.0",
		Uptime:          time.Now().Unix() - s.startedAt,
		GoVersion:       runtime.Version(),
		EnabledServices: enabledServices,
	})
}

func (s *Service) handleStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	keys := s.registry.List()
	streams := make([]StreamInfo, 0, len(keys))
	for _, key := range keys {
		stream := s.registry.Get(key)
		if stream == nil {
			continue
		}
		streams = append(streams, StreamInfo{
			App:             key.App,
			Name:            key.Name,
			HasPublisher:    stream.HasPublisher(),
			SubscriberCount: stream.SubscriberCount(),
		})
	}

	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: streams})
}

func (s *Service) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	source := s.relayMgr.GetTasks()
	tasks := make([]RelayTaskInfo, 0, len(source))
	for _, rt := range source {
		tasks = append(tasks, RelayTaskInfo{
			App:       rt.App,
			Name:      rt.Name,
			Mode:      rt.Mode,
			RemoteURL: rt.RemoteURL,
			Running:   rt.Running,
		})
	}

	s.writeJSON(w, http.StatusOK, RelayResponse{Tasks: tasks})
}

// handleRelayRestart accepts a restart request for a named relay task.
// TODO: actually forward the restart to relay.Manager once it exposes
// a restart-by-key method; for now this only validates the request.
func (s *Service) handleRelayRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		App  string `json:"app"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.App == "" || req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "app and name are required")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "restart initiated"})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

// If you are AI: This file tests the /api/* handlers directly
// (bypassing ServeMux routing) for status codes and JSON shape.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/svc/relay"
)

func newTestService() (*Service, *bus.Registry) {
	registry := bus.NewRegistry()
	return NewService(registry, relay.NewManager(registry)), registry
}

func TestHandleServerReportsVersionAndUptime(t *testing.T) {
	svc, _ := newTestService()
	w := httptest.NewRecorder()

	svc.handleServer(w, httptest.NewRequest(http.MethodGet, "/api/server", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp ServerResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version == "" {
		t.Error("Version is empty")
	}
	if resp.Uptime < 0 {
		t.Errorf("Uptime = %d, want >= 0", resp.Uptime)
	}
	if resp.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if len(resp.EnabledServices) == 0 {
		t.Error("EnabledServices is empty")
	}
}

func TestHandleStreamsEmptyThenPopulated(t *testing.T) {
	svc, registry := newTestService()

	w := httptest.NewRecorder()
	svc.handleStreams(w, httptest.NewRequest(http.MethodGet, "/api/streams", nil))
	var empty StreamsResponse
	if err := json.NewDecoder(w.Body).Decode(&empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(empty.Streams) != 0 {
		t.Fatalf("streams = %d, want 0", len(empty.Streams))
	}

	stream, _ := registry.GetOrCreate(bus.NewStreamKey("live", "test"))
	stream.AttachPublisher(1)

	w2 := httptest.NewRecorder()
	svc.handleStreams(w2, httptest.NewRequest(http.MethodGet, "/api/streams", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w2.Code)
	}
	var populated StreamsResponse
	if err := json.NewDecoder(w2.Body).Decode(&populated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(populated.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(populated.Streams))
	}
	got := populated.Streams[0]
	if got.App != "live" || got.Name != "test" {
		t.Errorf("stream identity = %+v, want live/test", got)
	}
	if !got.HasPublisher {
		t.Error("HasPublisher = false, want true")
	}
}

func TestHandleRelayReturnsEmptyTaskList(t *testing.T) {
	svc, _ := newTestService()
	w := httptest.NewRecorder()

	svc.handleRelay(w, httptest.NewRequest(http.MethodGet, "/api/relay", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp RelayResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tasks == nil {
		t.Error("Tasks is nil, want an empty slice")
	}
}

func TestHandleRelayRestartValidation(t *testing.T) {
	svc, _ := newTestService()

	wrongMethod := httptest.NewRecorder()
	svc.handleRelayRestart(wrongMethod, httptest.NewRequest(http.MethodGet, "/api/relay/restart", nil))
	if wrongMethod.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", wrongMethod.Code)
	}

	missingFields := httptest.NewRecorder()
	svc.handleRelayRestart(missingFields, httptest.NewRequest(http.MethodPost, "/api/relay/restart", nil))
	if missingFields.Code != http.StatusBadRequest {
		t.Errorf("POST with empty body status = %d, want 400", missingFields.Code)
	}
}

// If you are AI: This file implements the HTTP-FLV handler: GET
// /{app}/{name}.flv streams a live publisher's media as a progressive-
// download FLV byte stream to any HTTP client that asks for it.

package httpflv

import (
	"net/http"
	"path"
	"strings"

	"nonchalant/internal/core/bus"
)

// Handler serves HTTP-FLV progressive-download requests against the
// shared stream registry.
type Handler struct {
	registry *bus.Registry
}

// NewHandler returns a Handler backed by registry.
func NewHandler(registry *bus.Registry) *Handler {
	return &Handler{registry: registry}
}

// splitStreamPath parses "/{app}/{name}.flv" into (app, name, ok).
func splitStreamPath(urlPath string) (app, name string, ok bool) {
	trimmed := strings.TrimPrefix(urlPath, "/")
	if !strings.HasSuffix(trimmed, ".flv") {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimSuffix(trimmed, ".flv"), "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ServeHTTP handles GET /{app}/{name}.flv, streaming the named stream's
// live media until the client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	app, name, ok := splitStreamPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	stream := h.registry.Get(bus.NewStreamKey(app, name))
	if stream == nil || !stream.HasPublisher() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Response headers must be set before the first body write commits
	// them.
	w.Header().Set("Content-Type", "video/x-flv")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := NewSubscriber(w, stream)
	defer sub.Detach()
	sub.Attach()

	// The FLV header always advertises both audio and video tags present;
	// a player ignores the tags it never actually receives.
	if err := sub.WriteHeader(true, true); err != nil {
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	sub.ProcessMessages()
}

// RegisterRoutes wires the handler onto mux's catch-all route, deferring
// to a 404 for anything that isn't a ".flv" request. ServeMux prefers the
// most specific matching pattern, so other routes (notably /healthz and
// /ws/) keep working whatever order they are registered in.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) != ".flv" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.ServeHTTP(w, r)
	})
}

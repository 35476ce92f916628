// If you are AI: This file implements the WebSocket-FLV handler: GET
// /ws/{app}/{name} upgrades to a WebSocket and streams a live
// publisher's media as binary FLV-tag frames, one frame per message.

package wsflv

import (
	"net/http"
	"strings"

	"nonchalant/internal/core/bus"

	"github.com/gorilla/websocket"
)

// Handler upgrades matching requests to WebSocket and streams FLV.
type Handler struct {
	registry *bus.Registry
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler backed by registry. Origin checking is
// disabled: this is an ingress-side relay, not a browser-facing API
// that needs CSRF-style protection.
func NewHandler(registry *bus.Registry) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wsStreamPath parses "/ws/{app}/{name}" into (app, name, ok).
func wsStreamPath(urlPath string) (app, name string, ok bool) {
	rest := strings.TrimPrefix(urlPath, "/ws/")
	if rest == urlPath {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ServeHTTP handles GET /ws/{app}/{name}: validates the stream has a
// live publisher, upgrades the connection, then streams until the
// socket errors.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	app, name, ok := wsStreamPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	stream := h.registry.Get(bus.NewStreamKey(app, name))
	if stream == nil || !stream.HasPublisher() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := NewSubscriber(conn, stream)
	defer func() {
		sub.Detach()
		conn.Close()
	}()
	sub.Attach()

	if err := sub.WriteHeader(true, true); err != nil {
		return
	}
	sub.ProcessMessages()
}

// RegisterRoutes mounts the handler on every path under /ws/.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/", h.ServeHTTP)
}

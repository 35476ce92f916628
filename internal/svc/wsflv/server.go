// If you are AI: This file wraps Handler behind the Service shape the
// rest of cmd/ expects, mirroring httpflv.Service.

package wsflv

import (
	"net/http"

	"nonchalant/internal/core/bus"
)

// Service is the WebSocket-FLV ingress endpoint as seen from cmd/.
type Service struct {
	handler *Handler
}

// NewService builds the WebSocket-FLV service against registry.
func NewService(registry *bus.Registry) *Service {
	return &Service{handler: NewHandler(registry)}
}

// RegisterRoutes mounts the service's routes on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}

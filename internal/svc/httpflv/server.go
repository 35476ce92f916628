// If you are AI: This file wraps Handler behind the Service shape the
// rest of cmd/ expects, so main can register it alongside wsflv and api
// without caring about the concrete handler type underneath.

package httpflv

import (
	"net/http"

	"nonchalant/internal/core/bus"
)

// Service is the HTTP-FLV ingress endpoint as seen from cmd/: a thin
// wrapper that owns a Handler and exposes only route registration.
type Service struct {
	handler *Handler
}

// NewService builds the HTTP-FLV service against registry.
func NewService(registry *bus.Registry) *Service {
	return &Service{handler: NewHandler(registry)}
}

// RegisterRoutes mounts the service's routes on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}

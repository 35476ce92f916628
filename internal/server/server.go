// If you are AI: This file implements the HTTP server lifecycle and routing.

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"nonchalant/internal/config"
	"nonchalant/internal/core/bus"
	"nonchalant/internal/svc/api"
	"nonchalant/internal/svc/health"
	"nonchalant/internal/svc/httpflv"
	"nonchalant/internal/svc/relay"
	"nonchalant/internal/svc/rtmp"
	"nonchalant/internal/svc/transcode"
	"nonchalant/internal/svc/wsflv"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg          *config.Config
	httpServer   *http.Server
	healthServer *http.Server
	healthSvc    *health.Service
	httpflvSvc   *httpflv.Service
	wsflvSvc     *wsflv.Service
	apiSvc       *api.Service
	rtmpServer   *rtmp.Server
	relayMgr     *relay.Manager
	transcodeMgr *transcode.Manager
	registry     *bus.Registry
}

// New creates a new server instance with the given configuration.
// The server is not started until Start is called.
func New(cfg *config.Config) *Server {
	mux := http.NewServeMux()

	// The health probe is served both on the main HTTP mux and on its
	// own dedicated listener, so orchestrators can probe liveness
	// without reaching the media-serving port.
	healthSvc := health.New()
	healthSvc.RegisterRoutes(mux)

	healthMux := http.NewServeMux()
	healthSvc.RegisterRoutes(healthMux)
	healthServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.BindAddr, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	// Create bus registry, shared by every ingest/egress surface.
	registry := bus.NewRegistry()

	// Create HTTP-FLV service
	httpflvSvc := httpflv.NewService(registry)
	httpflvSvc.RegisterRoutes(mux)

	// Create WebSocket-FLV service
	wsflvSvc := wsflv.NewService(registry)
	wsflvSvc.RegisterRoutes(mux)

	// Create RTMP server with the configured protocol knobs
	rtmpServer := rtmp.NewServer(registry, rtmp.Options{
		ChunkSizeOut:  uint32(cfg.RTMP.ChunkSizeOut),
		WindowAckSize: uint32(cfg.RTMP.WindowAckSize),
		PeerBandwidth: uint32(cfg.RTMP.PeerBandwidth),
		ReadTimeout:   time.Duration(cfg.RTMP.ReadTimeoutMS) * time.Millisecond,
	})

	// Create relay manager (pull/push tasks configured under cfg.Relays)
	// and the transcode manager (stub unless built with -tags ffmpeg),
	// and expose both read-only through the API service.
	relayMgr := relay.NewManager(registry)
	transcodeMgr := transcode.NewManager(registry)
	apiSvc := api.NewService(registry, relayMgr)
	apiSvc.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.BindAddr, cfg.Server.HTTPPort),
		Handler: mux,
	}

	return &Server{
		cfg:          cfg,
		httpServer:   httpServer,
		healthServer: healthServer,
		healthSvc:    healthSvc,
		httpflvSvc:   httpflvSvc,
		wsflvSvc:     wsflvSvc,
		apiSvc:       apiSvc,
		rtmpServer:   rtmpServer,
		relayMgr:     relayMgr,
		transcodeMgr: transcodeMgr,
		registry:     registry,
	}
}

// Start begins serving HTTP requests and RTMP connections, and launches
// any configured relay/transcode tasks. This method blocks until the
// HTTP server is stopped or encounters an error.
func (s *Server) Start() error {
	if err := s.rtmpServer.Listen(fmt.Sprintf("%s:%d", s.cfg.Server.BindAddr, s.cfg.Server.RTMPPort)); err != nil {
		return fmt.Errorf("RTMP server listen: %w", err)
	}
	go func() {
		if err := s.rtmpServer.Accept(); err != nil {
			log.Printf("RTMP server stopped accepting: %v", err)
		}
	}()

	if err := s.relayMgr.StartTasks(s.cfg); err != nil {
		return fmt.Errorf("relay manager: %w", err)
	}
	if err := s.transcodeMgr.StartTasks(s.cfg); err != nil {
		return fmt.Errorf("transcode manager: %w", err)
	}

	go func() {
		if err := s.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("health server stopped: %v", err)
		}
	}()

	// Start HTTP server (blocks)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops every subsystem: relay and transcode tasks,
// the RTMP listener, and finally the HTTP server, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.relayMgr.Stop(); err != nil {
		log.Printf("relay manager shutdown: %v", err)
	}
	if err := s.transcodeMgr.Stop(); err != nil {
		log.Printf("transcode manager shutdown: %v", err)
	}
	if s.rtmpServer != nil {
		if err := s.rtmpServer.Close(); err != nil {
			log.Printf("RTMP server close: %v", err)
		}
	}
	if err := s.healthServer.Shutdown(ctx); err != nil {
		log.Printf("health server shutdown: %v", err)
	}
	return s.httpServer.Shutdown(ctx)
}

// If you are AI: This file implements the RTMP server that accepts connections.
// Each accepted connection gets an id and a ServiceSession (session.go) driven
// to completion in its own goroutine; command and media handling live in
// commands.go/play.go/publish.go, not here.

package rtmp

import (
	"log"
	"net"
	"sync/atomic"
	"time"

	"nonchalant/internal/core/bus"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// Options tunes the protocol parameters the server hands each connection:
// the outbound chunk size and flow-control values announced during
// connect(), and an optional per-read timeout on the socket.
type Options struct {
	ChunkSizeOut  uint32
	WindowAckSize uint32
	PeerBandwidth uint32
	ReadTimeout   time.Duration // zero means reads never time out
}

// DefaultOptions returns the values used when no configuration overrides
// them.
func DefaultOptions() Options {
	return Options{
		ChunkSizeOut:  rtmpprotocol.DefaultOutboundChunkSize,
		WindowAckSize: rtmpprotocol.DefaultWindowAckSize,
		PeerBandwidth: rtmpprotocol.DefaultPeerBandwidth,
	}
}

// Server accepts RTMP connections and hands each one to a ServiceSession.
type Server struct {
	registry *bus.Registry
	consumer Consumer
	opts     Options
	listener net.Listener
	nextID   uint64
}

// NewServer creates a new RTMP server backed by registry.
func NewServer(registry *bus.Registry, opts Options) *Server {
	return &Server{
		registry: registry,
		consumer: NewBusConsumer(registry),
		opts:     opts,
	}
}

// Listen starts listening on the specified address.
func (s *Server) Listen(addr string) error {
	var err error
	s.listener, err = net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return nil
}

// Accept accepts connections until the listener is closed, serving each
// one in its own goroutine. It returns the listener's terminal error,
// which Close's caller is expected to ignore.
func (s *Server) Accept() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		id := atomic.AddUint64(&s.nextID, 1)
		go s.serve(id, conn)
	}
}

// serve drives one accepted connection to completion and tears it down
// on exit, however it ended.
func (s *Server) serve(id uint64, conn net.Conn) {
	defer conn.Close()

	var rw = conn
	if s.opts.ReadTimeout > 0 {
		rw = &deadlineConn{Conn: conn, readTimeout: s.opts.ReadTimeout}
	}

	session := NewServiceSession(id, rw, s.registry, s.consumer)
	session.opts = s.opts
	err := session.Serve()
	session.Close(err)
	if err != nil {
		log.Printf("conn %d: %v", id, err)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// deadlineConn arms a fresh read deadline before every Read, bounding
// how long a stalled publisher can hold its connection goroutine.
type deadlineConn struct {
	net.Conn
	readTimeout time.Duration
}

// Read arms the deadline and delegates to the wrapped connection.
func (d *deadlineConn) Read(p []byte) (int, error) {
	if err := d.Conn.SetReadDeadline(time.Now().Add(d.readTimeout)); err != nil {
		return 0, err
	}
	return d.Conn.Read(p)
}

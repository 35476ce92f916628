// If you are AI: This file checks a decoded Config for values that
// parse fine as YAML but are nonsensical as a running server (ports
// out of range, or collided with each other).

package config

import "fmt"

// Validate reports the first configuration problem found, if any.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.RTMP.Validate(); err != nil {
		return fmt.Errorf("rtmp config: %w", err)
	}
	for i, r := range c.Relays {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("relay %d: %w", i, err)
		}
	}
	if c.Transcode != nil && c.Transcode.Enabled {
		for i, p := range c.Transcode.Profiles {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("transcode profile %d: %w", i, err)
			}
		}
	}
	return nil
}

// maxChunkSize mirrors the protocol's 24-bit chunk-size cap; the top bit
// of the 32-bit SET_CHUNK_SIZE field must stay zero.
const maxChunkSize = 0xFFFFFF

// Validate checks the RTMP protocol knobs for values the chunk layer
// cannot honor.
func (r *RTMPConfig) Validate() error {
	if r.ChunkSizeOut < 128 || r.ChunkSizeOut > maxChunkSize {
		return fmt.Errorf("chunk_size_out must be between 128 and %d, got %d", maxChunkSize, r.ChunkSizeOut)
	}
	if r.WindowAckSize <= 0 {
		return fmt.Errorf("window_ack_size must be positive, got %d", r.WindowAckSize)
	}
	if r.PeerBandwidth <= 0 {
		return fmt.Errorf("peer_bandwidth must be positive, got %d", r.PeerBandwidth)
	}
	if r.ReadTimeoutMS < 0 {
		return fmt.Errorf("read_timeout_ms must not be negative, got %d", r.ReadTimeoutMS)
	}
	return nil
}

// Validate checks one relay entry for an incomplete stream identity or a
// missing/unknown remote endpoint.
func (r *RelayConfig) Validate() error {
	if r.App == "" || r.Name == "" {
		return fmt.Errorf("app and name must both be set")
	}
	if r.Mode != "pull" && r.Mode != "push" {
		return fmt.Errorf("mode must be 'pull' or 'push', got %q", r.Mode)
	}
	if r.RemoteURL == "" {
		return fmt.Errorf("remote_url must be set")
	}
	return nil
}

// Validate checks one transcode profile names a source stream and an
// output destination.
func (p *TranscodeProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name must be set")
	}
	if p.App == "" || p.Stream == "" {
		return fmt.Errorf("app and stream must both be set")
	}
	if p.OutputURL == "" {
		return fmt.Errorf("output_url must be set")
	}
	return nil
}

// Validate checks that the three service ports are each in range and
// mutually distinct — binding two listeners to the same port would
// otherwise fail at startup with a much less specific error.
func (s *ServerConfig) Validate() error {
	for _, p := range []struct {
		name string
		port int
	}{
		{"health_port", s.HealthPort},
		{"http_port", s.HTTPPort},
		{"rtmp_port", s.RTMPPort},
	} {
		if p.port <= 0 || p.port > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535, got %d", p.name, p.port)
		}
	}

	if s.HealthPort == s.HTTPPort {
		return fmt.Errorf("health_port and http_port must be different, both are %d", s.HealthPort)
	}
	if s.HealthPort == s.RTMPPort {
		return fmt.Errorf("health_port and rtmp_port must be different, both are %d", s.HealthPort)
	}
	if s.HTTPPort == s.RTMPPort {
		return fmt.Errorf("http_port and rtmp_port must be different, both are %d", s.HTTPPort)
	}
	return nil
}

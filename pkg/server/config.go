package server

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gato/pkg/http"
)

// DefaultPort is the listen port used when PORT is not set.
const DefaultPort = "3333"

// Environment variables read by ConfigFromEnv.
const (
	EnvPort      = "PORT"
	EnvMaxConns  = "GATO_MAX_CONNS"
	EnvFraming   = "GATO_FRAMING"
	EnvChunkSize = "GATO_CHUNK_SIZE"
	EnvLogLevel  = "GATO_LOG_LEVEL"
	EnvStaticDir = "GATO_STATIC"
)

// Config holds server configuration.
type Config struct {
	// Port is the TCP port bound on all interfaces.
	Port string
	// MaxConns caps the number of connections served at once. Zero means
	// one goroutine per accepted connection with no limit.
	MaxConns int
	// Framing decides when a request has been fully read.
	Framing http.Framing
	// ChunkSize is the size of each read on a connection.
	ChunkSize int
	// LogLevel is a logrus level name.
	LogLevel string
	// StaticDir, when set, is served under /static/ by gato-server.
	StaticDir string
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Port:      DefaultPort,
		Framing:   http.FramingShortRead,
		ChunkSize: http.DefaultChunkSize,
		LogLevel:  "info",
	}
}

// Addr returns the listen address, always on all interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", c.Port)
}

// ConfigFromEnv reads the configuration from the process environment.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Port = v
	}
	if v, ok := lookup(EnvMaxConns); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid %s %q", EnvMaxConns, v)
		}
		cfg.MaxConns = n
	}
	if v, ok := lookup(EnvFraming); ok {
		f, err := http.ParseFraming(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvFraming, err)
		}
		cfg.Framing = f
	}
	if v, ok := lookup(EnvChunkSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid %s %q", EnvChunkSize, v)
		}
		cfg.ChunkSize = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvStaticDir); ok {
		cfg.StaticDir = v
	}
	return cfg, nil
}

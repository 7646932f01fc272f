package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gato/pkg/http"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := configFromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, "0.0.0.0:3333", cfg.Addr())
	assert.Equal(t, 0, cfg.MaxConns)
	assert.Equal(t, http.FramingShortRead, cfg.Framing)
	assert.Equal(t, 512, cfg.ChunkSize)
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg, err := configFromLookup(lookupFrom(map[string]string{
		EnvPort:      "8080",
		EnvMaxConns:  "64",
		EnvFraming:   "content-length",
		EnvChunkSize: "4096",
		EnvLogLevel:  "debug",
		EnvStaticDir: "/srv/www",
	}))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:      "8080",
		MaxConns:  64,
		Framing:   http.FramingContentLength,
		ChunkSize: 4096,
		LogLevel:  "debug",
		StaticDir: "/srv/www",
	}, cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestConfigEmptyPortUsesDefault(t *testing.T) {
	cfg, err := configFromLookup(lookupFrom(map[string]string{EnvPort: ""}))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestConfigInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvPort, "http"},
		{EnvPort, "70000"},
		{EnvMaxConns, "-1"},
		{EnvMaxConns, "many"},
		{EnvFraming, "chunked"},
		{EnvChunkSize, "0"},
		{EnvChunkSize, "big"},
	}
	for _, tt := range tests {
		_, err := configFromLookup(lookupFrom(map[string]string{tt.key: tt.value}))
		assert.Error(t, err, "%s=%s", tt.key, tt.value)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvPort, "4444")
	t.Setenv(EnvFraming, "short-read")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "4444", cfg.Port)
	assert.Equal(t, http.FramingShortRead, cfg.Framing)
}

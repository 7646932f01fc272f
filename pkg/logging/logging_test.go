package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("remote", "127.0.0.1:5000").Info("new connection")
	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, `msg="new connection"`)
	assert.Contains(t, out, "remote=\"127.0.0.1:5000\"")
}

func TestNewDefaultLevel(t *testing.T) {
	logger, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("error", &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", nil)
	assert.Error(t, err)
}

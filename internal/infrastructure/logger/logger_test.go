package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/infrastructure/config"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}

func TestNewBuildsConfiguredLogger(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestWithHelpersDeriveChildLoggers(t *testing.T) {
	log := NewNop()

	child := log.WithComponent("board")
	require.NotNil(t, child)
	require.NotSame(t, log, child)

	withErr := log.WithError(errors.New("disk full"))
	require.NotNil(t, withErr)
	withErr.Error("Document save failed")
}

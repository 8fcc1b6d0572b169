package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billrob/xunit/config"
)

func TestNewLogger_UsesConfigVerbosity(t *testing.T) {
	cfg := &config.Config{Verbosity: "debug"}

	log, err := newLogger(cfg, "")
	require.NoError(t, err)
	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))
}

func TestNewLogger_FlagOverridesConfig(t *testing.T) {
	cfg := &config.Config{Verbosity: "debug"}

	log, err := newLogger(cfg, "error")
	require.NoError(t, err)
	assert.False(t, log.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, log.Enabled(t.Context(), slog.LevelError))
}

func TestNewLogger_RejectsBadFlagLevel(t *testing.T) {
	_, err := newLogger(config.Default(), "shouting")
	require.Error(t, err)
}

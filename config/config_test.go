package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSideFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	assembly := filepath.Join(dir, "calc.tests.dll")
	require.NoError(t, os.WriteFile(assembly+SideFileSuffix, []byte(content), 0o644))
	return assembly
}

func TestLoad_MissingSideFileUsesDefaults(t *testing.T) {
	assembly := filepath.Join(t.TempDir(), "calc.tests.dll")

	cfg, err := Load(assembly, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Verbosity)
	assert.False(t, cfg.DiagnosticMessages)
	assert.Zero(t, cfg.MaxParallelThreads)
}

func TestLoad_ReadsSideFile(t *testing.T) {
	assembly := writeSideFile(t, `
verbosity: debug
diagnosticMessages: true
maxParallelThreads: 4
`)

	cfg, err := Load(assembly, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Verbosity)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	opts := cfg.ExecutionOptions()
	assert.True(t, opts.DiagnosticMessages)
	assert.Equal(t, 4, opts.MaxParallelThreads)
}

func TestLoad_MalformedSideFileIsAnError(t *testing.T) {
	assembly := writeSideFile(t, "verbosity: [not, a, string")

	_, err := Load(assembly, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_RejectsUnknownVerbosity(t *testing.T) {
	assembly := writeSideFile(t, "verbosity: shouting")

	_, err := Load(assembly, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown verbosity")
}

func TestLoad_RejectsNegativeParallelism(t *testing.T) {
	assembly := writeSideFile(t, "maxParallelThreads: -1")

	_, err := Load(assembly, slog.Default())
	require.Error(t, err)
}

func TestLoad_RequiresAssemblyPath(t *testing.T) {
	_, err := Load("", slog.Default())
	require.Error(t, err)
}

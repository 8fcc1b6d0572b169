// Package config loads the per-session configuration for a target assembly.
// Settings are read once at session start from a YAML side-file next to the
// assembly and are immutable for the session's lifetime.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/billrob/xunit/engine"
)

// SideFileSuffix is appended to the assembly path to locate its config
// side-file, mirroring the framework's `<assembly>.config` convention.
const SideFileSuffix = ".config.yaml"

// Config holds the session-wide settings for one target assembly.
type Config struct {
	// Verbosity is the diagnostics log level: debug, info, warn or error.
	Verbosity string `yaml:"verbosity"`

	// DiagnosticMessages asks the engine to emit its internal diagnostics.
	DiagnosticMessages bool `yaml:"diagnosticMessages"`

	// MaxParallelThreads caps engine-side parallelism. Zero lets the
	// engine decide.
	MaxParallelThreads int `yaml:"maxParallelThreads"`
}

// Default returns the configuration used when no side-file exists.
func Default() *Config {
	return &Config{Verbosity: "info"}
}

// Load reads the config side-file for the given assembly. A missing file is
// not an error: the defaults apply. A malformed file is an error — a present
// but unreadable config is a misconfiguration the user must see.
func Load(assemblyPath string, log *slog.Logger) (*Config, error) {
	if assemblyPath == "" {
		return nil, fmt.Errorf("assembly path is required")
	}
	if log == nil {
		log = slog.Default()
	}

	path := assemblyPath + SideFileSuffix
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug("No config side-file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	log.Debug("Loaded config side-file", "path", path,
		"verbosity", cfg.Verbosity, "diagnosticMessages", cfg.DiagnosticMessages,
		"maxParallelThreads", cfg.MaxParallelThreads)
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := parseLevel(c.Verbosity); err != nil {
		return err
	}
	if c.MaxParallelThreads < 0 {
		return fmt.Errorf("maxParallelThreads cannot be negative: %d", c.MaxParallelThreads)
	}
	return nil
}

// LogLevel returns the slog level for the configured verbosity.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Verbosity)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ExecutionOptions derives the engine execution defaults for the session.
func (c *Config) ExecutionOptions() engine.ExecutionOptions {
	return engine.ExecutionOptions{
		DiagnosticMessages: c.DiagnosticMessages,
		MaxParallelThreads: c.MaxParallelThreads,
	}
}

func parseLevel(verbosity string) (slog.Level, error) {
	switch verbosity {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown verbosity %q (expected debug, info, warn or error)", verbosity)
	}
}

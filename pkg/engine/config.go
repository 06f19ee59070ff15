package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration. Credentials are not part of it; they come
// from the environment and the settings documents (see package credentials).
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
	Vision   VisionConfig `yaml:"vision"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	HTTPAddr string `yaml:"http_addr"` // Empty serves over stdio.
}

// VisionConfig tunes the understand_image confirmation gate.
type VisionConfig struct {
	ConfirmExpensive    *bool `yaml:"confirm_expensive"`     // Default true.
	LongPromptThreshold int   `yaml:"long_prompt_threshold"` // 0 = package default.
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Name:    "minimax",
			Version: "0.1.0",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("engine: config: %w", err)
	}

	if c.Server.Name == "" {
		return fmt.Errorf("engine: config: server name is required")
	}

	if c.Vision.LongPromptThreshold < 0 {
		return fmt.Errorf("engine: config: vision long_prompt_threshold must be >= 0")
	}

	return nil
}

// ConfirmExpensive reports whether expensive image analyses are confirmed.
func (c Config) ConfirmExpensive() bool {
	return c.Vision.ConfirmExpensive == nil || *c.Vision.ConfirmExpensive
}

// ParseLogLevel maps a level name to a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

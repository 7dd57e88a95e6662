// Package config defines the configuration of the route-planning server and
// loads it from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/globalroute/navigator/pkg/classifier"
	"github.com/globalroute/navigator/pkg/llm"
)

// Config is the top-level configuration file.
type Config struct {
	LogLevel   string           `yaml:"log_level"` // debug, info, warn, error
	Server     ServerConfig     `yaml:"server"`
	Graph      GraphConfig      `yaml:"graph"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Search     SearchConfig     `yaml:"search"`
	MCP        MCPConfig        `yaml:"mcp"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	HTTPAddr     string        `yaml:"http_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `yaml:"cors_origin"`
}

// GraphConfig says where the transport network is loaded from. Path may be a
// framed snapshot or a node-link .json document.
type GraphConfig struct {
	Path string `yaml:"path"`
}

// ClassifierConfig configures the cargo classifier.
type ClassifierConfig struct {
	Enabled bool       `yaml:"enabled"`
	LLM     llm.Config `yaml:"llm"`
	Prompt  string     `yaml:"prompt"`
}

// SearchConfig holds the request defaults applied when a field is omitted.
type SearchConfig struct {
	DefaultTopN int `yaml:"default_top_n"`
	// MaxTopN caps top_n on the public endpoints. Zero disables the cap.
	MaxTopN int `yaml:"max_top_n"`
}

// MCPConfig toggles the MCP tool server on stdio.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a configuration that runs locally without a classifier.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			HTTPAddr:     ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			CORSOrigin:   "*",
		},
		Graph: GraphConfig{Path: "network.grs"},
		Classifier: ClassifierConfig{
			Enabled: false,
			LLM:     llm.DefaultConfig(),
			Prompt:  classifier.DefaultPrompt,
		},
		Search: SearchConfig{DefaultTopN: 3, MaxTopN: 50},
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig. Environment
// variables (${VAR}) are expanded before decoding and unknown keys are
// rejected. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(raw)))))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("YAML syntax error in config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values a YAML file can get wrong.
func (c Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	if c.Graph.Path == "" {
		return fmt.Errorf("graph.path must not be empty")
	}
	if c.Search.DefaultTopN <= 0 {
		return fmt.Errorf("search.default_top_n must be positive, got %d", c.Search.DefaultTopN)
	}
	if c.Search.MaxTopN < 0 {
		return fmt.Errorf("search.max_top_n must not be negative, got %d", c.Search.MaxTopN)
	}
	if c.Classifier.Enabled && c.Classifier.LLM.BaseURL == "" {
		return fmt.Errorf("classifier.llm.base_url is required when the classifier is enabled")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

package app

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Config holds everything an App needs for one run.
type Config struct {
	ManifestPath string // .hcl file or directory of .hcl files

	TypeName string
	Method   string
	Args     []string

	// Dependencies are registered as string values before composing.
	Dependencies map[string]string

	LogFormat string
	LogLevel  string

	RelayURL       string
	RelayNamespace string
	RelayTimeout   time.Duration

	PrintMetrics bool
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.Method != "" && cfg.TypeName == "" {
		return nil, errors.New("a method can only be called on a named type")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
	return &cfg, nil
}
